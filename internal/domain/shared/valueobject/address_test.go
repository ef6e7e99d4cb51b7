package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddressDTO() AddressDTO {
	return AddressDTO{
		FullName:   "Asha Rao",
		Phone:      "98450 12345",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
	}
}

func TestNewShippingAddress(t *testing.T) {
	t.Run("valid address defaults country", func(t *testing.T) {
		a, err := NewShippingAddress(validAddressDTO())
		require.NoError(t, err)
		assert.Equal(t, "India", a.Country())
		assert.Equal(t, "9845012345", a.Phone())
		assert.Equal(t, "Asha Rao, 12 MG Road, Bengaluru, Karnataka 560001, India", a.String())
	})

	tests := []struct {
		name   string
		mutate func(*AddressDTO)
		errMsg string
	}{
		{"missing name", func(d *AddressDTO) { d.FullName = " " }, "full name is required"},
		{"bad phone", func(d *AddressDTO) { d.Phone = "12ab" }, "invalid phone number"},
		{"missing line1", func(d *AddressDTO) { d.Line1 = "" }, "address line 1 is required"},
		{"missing city", func(d *AddressDTO) { d.City = "" }, "city is required"},
		{"missing state", func(d *AddressDTO) { d.State = "" }, "state is required"},
		{"bad pin", func(d *AddressDTO) { d.PostalCode = "056001" }, "invalid PIN code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := validAddressDTO()
			tt.mutate(&dto)
			_, err := NewShippingAddress(dto)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("foreign address skips PIN rule", func(t *testing.T) {
		dto := validAddressDTO()
		dto.Country = "Singapore"
		dto.PostalCode = "018956"
		_, err := NewShippingAddress(dto)
		assert.NoError(t, err)
	})
}

func TestShippingAddress_ValueScan(t *testing.T) {
	a, err := NewShippingAddress(validAddressDTO())
	require.NoError(t, err)

	v, err := a.Value()
	require.NoError(t, err)

	var back ShippingAddress
	require.NoError(t, back.Scan(v))
	assert.Equal(t, a, back)

	var empty ShippingAddress
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestShippingAddress_JSON(t *testing.T) {
	a, err := NewShippingAddress(validAddressDTO())
	require.NoError(t, err)
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"postal_code":"560001"`)
}
