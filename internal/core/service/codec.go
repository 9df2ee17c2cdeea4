package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/trakjobs/trakjobs-go/internal/core/domain"
)

// encodeClient builds the wire payload of a client form. Text fields are
// trimmed and left out when empty.
func encodeClient(in domain.ClientInput) (map[string]any, error) {
	payload := map[string]any{}
	text := []struct{ ui, value string }{
		{"businessName", in.BusinessName},
		{"businessType", in.BusinessType},
		{"industry", in.Industry},
		{"businessRegistrationNumber", in.BusinessRegistrationNumber},
		{"contactPersonName", in.ContactPersonName},
		{"designationRole", in.DesignationRole},
		{"emailAddress", in.EmailAddress},
		{"mobileNumber", in.MobileNumber},
		{"alternateMobileNumber", in.AlternateMobileNumber},
		{"addressLine1", in.AddressLine1},
		{"addressLine2", in.AddressLine2},
		{"city", in.City},
		{"state", in.State},
		{"country", in.Country},
		{"pinZipcode", in.PinZipcode},
		{"billingName", in.BillingName},
		{"paymentTerm", in.PaymentTerm},
		{"preferredCurrency", in.PreferredCurrency},
		{"websiteUrl", in.WebsiteURL},
		{"clientCategory", in.ClientCategory},
		{"notesRemark", in.NotesRemark},
	}
	for _, f := range text {
		if v := strings.TrimSpace(f.value); v != "" {
			payload[clientFields.Wire(f.ui)] = v
		}
	}

	if in.SameAsBillingAddress {
		payload[clientFields.Wire("sameAsBillingAddress")] = true
	}
	if tax := strings.TrimSpace(in.TaxPercentage); tax != "" {
		f, err := strconv.ParseFloat(tax, 64)
		// ParseFloat accepts NaN and Inf, which JSON cannot carry.
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, domain.ErrValidation.WithFields(map[string]string{
				"taxPercentage": "Tax percentage must be a number",
			})
		}
		payload[clientFields.Wire("taxPercentage")] = f
	}

	status := strings.ToLower(strings.TrimSpace(in.ClientStatus))
	if status == "" {
		status = domain.ClientStatusActive
	}
	payload[clientFields.Wire("status")] = status

	return payload, nil
}

// decodeClient converts a wire record to UI shape.
func decodeClient(m map[string]any) domain.Client {
	str := func(ui string) string {
		return stringValue(m[clientFields.Wire(ui)])
	}

	c := domain.Client{
		ID:                         str("id"),
		BusinessName:               str("businessName"),
		BusinessType:               str("businessType"),
		Industry:                   str("industry"),
		BusinessRegistrationNumber: str("businessRegistrationNumber"),
		ContactPersonName:          str("contactPersonName"),
		DesignationRole:            str("designationRole"),
		EmailAddress:               str("emailAddress"),
		MobileNumber:               str("mobileNumber"),
		AlternateMobileNumber:      str("alternateMobileNumber"),
		AddressLine1:               str("addressLine1"),
		AddressLine2:               str("addressLine2"),
		City:                       str("city"),
		State:                      str("state"),
		Country:                    str("country"),
		PinZipcode:                 str("pinZipcode"),
		BillingName:                str("billingName"),
		SameAsBillingAddress:       boolValue(m[clientFields.Wire("sameAsBillingAddress")]),
		PaymentTerm:                str("paymentTerm"),
		PreferredCurrency:          str("preferredCurrency"),
		TaxPercentage:              floatValue(m[clientFields.Wire("taxPercentage")]),
		WebsiteURL:                 str("websiteUrl"),
		ClientCategory:             str("clientCategory"),
		NotesRemark:                str("notesRemark"),
		Status:                     str("status"),
		CreatedAt:                  str("createdAt"),
		UpdatedAt:                  str("updatedAt"),
	}
	if c.Status == "" {
		c.Status = domain.ClientStatusActive
	}
	return c
}

func decodeClients(items []map[string]any) []domain.Client {
	out := make([]domain.Client, 0, len(items))
	for _, m := range items {
		out = append(out, decodeClient(m))
	}
	return out
}
