package content

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFAQ(t *testing.T) {
	f, err := NewFAQ(" How long is shipping? ", "3-5 days", "", 2)
	require.NoError(t, err)
	assert.Equal(t, "How long is shipping?", f.Question)
	assert.Equal(t, FAQGeneral, f.Category)
	assert.True(t, f.IsActive)

	f.ToggleStatus()
	assert.False(t, f.IsActive)

	_, err = NewFAQ("Q", "A", "BILLING", 0)
	assert.Error(t, err)
	_, err = NewFAQ("", "A", FAQOrders, 0)
	assert.Error(t, err)
}

func validInquiry() InquiryInput {
	return InquiryInput{
		Name:            "Ravi",
		Email:           "Ravi@Example.com",
		ProductType:     "Hoodie",
		Description:     "A hoodie with our team logo on the back",
		ReferenceImages: []string{"https://cdn.example.com/a.png", " "},
		Budget:          decimal.NewFromInt(2500),
	}
}

func TestNewDesignInquiry(t *testing.T) {
	i, err := NewDesignInquiry(validInquiry())
	require.NoError(t, err)
	assert.Equal(t, InquiryNew, i.Status)
	assert.Equal(t, "ravi@example.com", i.Email)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, i.ReferenceImages)

	tests := []struct {
		name   string
		mutate func(*InquiryInput)
	}{
		{"missing name", func(in *InquiryInput) { in.Name = "" }},
		{"bad email", func(in *InquiryInput) { in.Email = "ravi" }},
		{"short description", func(in *InquiryInput) { in.Description = "logo" }},
		{"too many images", func(in *InquiryInput) { in.ReferenceImages = strings.Split("a,b,c,d,e,f", ",") }},
		{"negative budget", func(in *InquiryInput) { in.Budget = decimal.NewFromInt(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInquiry()
			tt.mutate(&in)
			_, err := NewDesignInquiry(in)
			assert.Error(t, err)
		})
	}
}

func TestDesignInquiry_UpdateStatus(t *testing.T) {
	i, err := NewDesignInquiry(validInquiry())
	require.NoError(t, err)

	notes := "quoted 3000"
	require.NoError(t, i.UpdateStatus(InquiryQuoted, &notes))
	assert.Equal(t, "quoted 3000", i.AdminNotes)

	require.NoError(t, i.UpdateStatus(InquiryClosed, nil))
	assert.Equal(t, "quoted 3000", i.AdminNotes)
	assert.Error(t, i.UpdateStatus(InquiryInReview, nil))
	assert.Error(t, i.UpdateStatus("DONE", nil))
}
