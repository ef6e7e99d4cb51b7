package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	pinCodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{10,13}$`)
)

// ShippingAddress is a value object holding the delivery address of an order.
// It is immutable once constructed.
type ShippingAddress struct {
	fullName   string
	phone      string
	line1      string
	line2      string
	city       string
	state      string
	postalCode string
	country    string
}

// AddressDTO is the transport shape of a ShippingAddress
type AddressDTO struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
}

// NewShippingAddress validates and builds a ShippingAddress
func NewShippingAddress(dto AddressDTO) (ShippingAddress, error) {
	a := ShippingAddress{
		fullName:   strings.TrimSpace(dto.FullName),
		phone:      strings.ReplaceAll(strings.TrimSpace(dto.Phone), " ", ""),
		line1:      strings.TrimSpace(dto.Line1),
		line2:      strings.TrimSpace(dto.Line2),
		city:       strings.TrimSpace(dto.City),
		state:      strings.TrimSpace(dto.State),
		postalCode: strings.TrimSpace(dto.PostalCode),
		country:    strings.TrimSpace(dto.Country),
	}
	if a.country == "" {
		a.country = "India"
	}

	switch {
	case a.fullName == "":
		return ShippingAddress{}, fmt.Errorf("full name is required")
	case len(a.fullName) > 100:
		return ShippingAddress{}, fmt.Errorf("full name cannot exceed 100 characters")
	case !phonePattern.MatchString(a.phone):
		return ShippingAddress{}, fmt.Errorf("invalid phone number")
	case a.line1 == "":
		return ShippingAddress{}, fmt.Errorf("address line 1 is required")
	case len(a.line1) > 200 || len(a.line2) > 200:
		return ShippingAddress{}, fmt.Errorf("address lines cannot exceed 200 characters")
	case a.city == "":
		return ShippingAddress{}, fmt.Errorf("city is required")
	case a.state == "":
		return ShippingAddress{}, fmt.Errorf("state is required")
	case a.country == "India" && !pinCodePattern.MatchString(a.postalCode):
		return ShippingAddress{}, fmt.Errorf("invalid PIN code")
	case a.postalCode == "":
		return ShippingAddress{}, fmt.Errorf("postal code is required")
	}
	return a, nil
}

func (a ShippingAddress) FullName() string { return a.fullName }
func (a ShippingAddress) Phone() string { return a.phone }
func (a ShippingAddress) City() string { return a.city }
func (a ShippingAddress) State() string { return a.state }
func (a ShippingAddress) PostalCode() string { return a.postalCode }
func (a ShippingAddress) Country() string { return a.country }

// IsEmpty returns true if the address has not been set
func (a ShippingAddress) IsEmpty() bool {
	return a.fullName == "" && a.line1 == ""
}

// String returns the address on a single line
func (a ShippingAddress) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := []string{a.fullName, a.line1}
	if a.line2 != "" {
		parts = append(parts, a.line2)
	}
	parts = append(parts, a.city, a.state+" "+a.postalCode, a.country)
	return strings.Join(parts, ", ")
}

// ToDTO converts the address to its transport shape
func (a ShippingAddress) ToDTO() AddressDTO {
	return AddressDTO{
		FullName:   a.fullName,
		Phone:      a.phone,
		Line1:      a.line1,
		Line2:      a.line2,
		City:       a.city,
		State:      a.state,
		PostalCode: a.postalCode,
		Country:    a.country,
	}
}

// MarshalJSON implements json.Marshaler
func (a ShippingAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDTO())
}

// UnmarshalJSON implements json.Unmarshaler. Stored addresses were validated
// on the way in, so fields are assigned directly.
func (a *ShippingAddress) UnmarshalJSON(data []byte) error {
	var dto AddressDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	*a = ShippingAddress{
		fullName:   dto.FullName,
		phone:      dto.Phone,
		line1:      dto.Line1,
		line2:      dto.Line2,
		city:       dto.City,
		state:      dto.State,
		postalCode: dto.PostalCode,
		country:    dto.Country,
	}
	return nil
}

// Value implements driver.Valuer, storing the address as a JSON column
func (a ShippingAddress) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *ShippingAddress) Scan(value any) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into ShippingAddress", value)
	}
	return json.Unmarshal(data, a)
}
