package content

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// InquiryStatus tracks the handling of a design inquiry
type InquiryStatus string

const (
	InquiryNew      InquiryStatus = "NEW"
	InquiryInReview InquiryStatus = "IN_REVIEW"
	InquiryQuoted   InquiryStatus = "QUOTED"
	InquiryClosed   InquiryStatus = "CLOSED"
)

// IsValid checks if the status is known
func (s InquiryStatus) IsValid() bool {
	switch s {
	case InquiryNew, InquiryInReview, InquiryQuoted, InquiryClosed:
		return true
	}
	return false
}

// MaxReferenceImages bounds the images attached to one inquiry
const MaxReferenceImages = 5

var (
	inquiryEmailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	ErrInquiryNotFound = shared.NewDomainError("INQUIRY_NOT_FOUND", "Design inquiry not found")
)

// DesignInquiry is a customer's request for a custom design
type DesignInquiry struct {
	shared.BaseEntity
	Name            string
	Email           string
	Phone           string
	ProductType     string
	Description     string
	ReferenceImages []string
	Budget          decimal.Decimal
	Status          InquiryStatus
	AdminNotes      string
}

// InquiryInput carries the customer-supplied fields
type InquiryInput struct {
	Name            string
	Email           string
	Phone           string
	ProductType     string
	Description     string
	ReferenceImages []string
	Budget          decimal.Decimal
}

// NewDesignInquiry validates in and creates a NEW inquiry
func NewDesignInquiry(in InquiryInput) (*DesignInquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Name == "":
		return nil, shared.NewDomainError("INVALID_NAME", "Name is required")
	case !inquiryEmailRegex.MatchString(in.Email):
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	case strings.TrimSpace(in.ProductType) == "":
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE", "Product type is required")
	case len(in.Description) < 10:
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Please describe your design in at least 10 characters")
	case len(in.ReferenceImages) > MaxReferenceImages:
		return nil, shared.NewDomainError("TOO_MANY_IMAGES", "At most 5 reference images are allowed")
	case in.Budget.IsNegative():
		return nil, shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}

	images := make([]string, 0, len(in.ReferenceImages))
	for _, img := range in.ReferenceImages {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	return &DesignInquiry{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            in.Name,
		Email:           in.Email,
		Phone:           strings.TrimSpace(in.Phone),
		ProductType:     strings.TrimSpace(in.ProductType),
		Description:     in.Description,
		ReferenceImages: images,
		Budget:          in.Budget,
		Status:          InquiryNew,
	}, nil
}

// UpdateStatus moves the inquiry to status and replaces admin notes when given
func (i *DesignInquiry) UpdateStatus(status InquiryStatus, notes *string) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown inquiry status")
	}
	if i.Status == InquiryClosed && status != InquiryClosed {
		return shared.NewDomainError("INVALID_STATE", "Closed inquiries cannot be reopened")
	}
	i.Status = status
	if notes != nil {
		i.AdminNotes = strings.TrimSpace(*notes)
	}
	i.UpdatedAt = time.Now()
	return nil
}
