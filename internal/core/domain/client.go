package domain

import "strings"

// Client status values.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// DefaultClientCategory is shown when a client carries no category.
const DefaultClientCategory = "Regular"

// Client is a customer organization of a vendor, in UI shape.
type Client struct {
	ID string `json:"id"`

	// Basic business information
	BusinessName               string `json:"businessName"`
	BusinessType               string `json:"businessType"`
	Industry                   string `json:"industry" table:"wide"`
	BusinessRegistrationNumber string `json:"businessRegistrationNumber" table:"wide"`

	// Primary contact
	ContactPersonName     string `json:"contactPersonName"`
	DesignationRole       string `json:"designationRole" table:"wide"`
	EmailAddress          string `json:"emailAddress"`
	MobileNumber          string `json:"mobileNumber"`
	AlternateMobileNumber string `json:"alternateMobileNumber" table:"wide"`

	// Business address
	AddressLine1 string `json:"addressLine1" table:"wide"`
	AddressLine2 string `json:"addressLine2" table:"wide"`
	City         string `json:"city"`
	State        string `json:"state" table:"wide"`
	Country      string `json:"country" table:"wide"`
	PinZipcode   string `json:"pinZipcode" table:"wide"`

	// Billing and financial details
	BillingName          string  `json:"billingName" table:"wide"`
	SameAsBillingAddress bool    `json:"sameAsBillingAddress" table:"wide"`
	PaymentTerm          string  `json:"paymentTerm" table:"wide"`
	PreferredCurrency    string  `json:"preferredCurrency" table:"wide"`
	TaxPercentage        float64 `json:"taxPercentage" table:"wide"`

	// Additional details
	WebsiteURL     string `json:"websiteUrl" table:"wide"`
	ClientCategory string `json:"clientCategory"`
	NotesRemark    string `json:"notesRemark" table:"wide"`

	Status    string `json:"status"`
	CreatedAt string `json:"createdAt" table:"wide"`
	UpdatedAt string `json:"updatedAt" table:"wide"`
}

// DisplayName is the contact person, falling back to the business name.
func (c Client) DisplayName() string {
	if c.ContactPersonName != "" {
		return c.ContactPersonName
	}
	return c.BusinessName
}

// Address joins both address lines.
func (c Client) Address() string {
	return strings.TrimSpace(c.AddressLine1 + " " + c.AddressLine2)
}

// Category returns the client category or DefaultClientCategory.
func (c Client) Category() string {
	if c.ClientCategory == "" {
		return DefaultClientCategory
	}
	return c.ClientCategory
}

// StatusLabel returns the status with its first letter upper-cased.
func (c Client) StatusLabel() string {
	return Capitalize(c.Status)
}

// Capitalize upper-cases the first letter of s; "" becomes "Active".
func Capitalize(s string) string {
	if s == "" {
		return "Active"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ClientInput is the client form as typed by the user. All text fields are
// sent trimmed; empty ones are left out of the request.
type ClientInput struct {
	BusinessName               string
	BusinessType               string
	Industry                   string
	BusinessRegistrationNumber string

	ContactPersonName     string
	DesignationRole       string
	EmailAddress          string
	MobileNumber          string
	AlternateMobileNumber string

	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
	PinZipcode   string

	BillingName          string
	SameAsBillingAddress bool
	PaymentTerm          string
	PreferredCurrency    string
	TaxPercentage        string

	WebsiteURL     string
	ClientCategory string
	NotesRemark    string

	ClientStatus string
}

// Validate runs the required-field checks of the add-client form.
func (in ClientInput) Validate() error {
	fields := map[string]string{}
	required := []struct {
		key, value, msg string
	}{
		{"businessName", in.BusinessName, "Business name is required"},
		{"businessType", in.BusinessType, "Business type is required"},
		{"contactPersonName", in.ContactPersonName, "Contact person name is required"},
		{"addressLine1", in.AddressLine1, "Address line 1 is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			fields[r.key] = r.msg
		}
	}
	if len(fields) > 0 {
		return ErrValidation.WithFields(fields)
	}
	return nil
}
