package service

// fieldTable translates field names between UI and wire shape. Names
// missing from the table pass through unchanged in both directions.
type fieldTable struct {
	toWire map[string]string
	toUI   map[string]string
}

func newFieldTable(pairs [][2]string) fieldTable {
	t := fieldTable{
		toWire: make(map[string]string, len(pairs)),
		toUI:   make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		t.toWire[p[0]] = p[1]
		t.toUI[p[1]] = p[0]
	}
	return t
}

// Wire returns the wire name of a UI field.
func (t fieldTable) Wire(ui string) string {
	if w, ok := t.toWire[ui]; ok {
		return w
	}
	return ui
}

// UI returns the UI name of a wire field.
func (t fieldTable) UI(wire string) string {
	if u, ok := t.toUI[wire]; ok {
		return u
	}
	return wire
}

// clientFields maps domain.Client JSON names to the client resource.
var clientFields = newFieldTable([][2]string{
	{"id", "id"},
	{"businessName", "business_name"},
	{"businessType", "business_type"},
	{"industry", "industry"},
	{"businessRegistrationNumber", "business_registration_number"},
	{"contactPersonName", "contact_person_name"},
	{"designationRole", "designation_role"},
	{"emailAddress", "email"},
	{"mobileNumber", "mobile_number"},
	{"alternateMobileNumber", "alternate_mobile_number"},
	{"addressLine1", "address_line_1"},
	{"addressLine2", "address_line_2"},
	{"city", "city"},
	{"state", "state"},
	{"country", "country"},
	{"pinZipcode", "pin_zipcode"},
	{"billingName", "billing_name"},
	{"sameAsBillingAddress", "same_as_billing_address"},
	{"paymentTerm", "payment_term"},
	{"preferredCurrency", "preferred_currency"},
	{"taxPercentage", "tax_percentage"},
	{"websiteUrl", "website_url"},
	{"clientCategory", "client_category"},
	{"notesRemark", "notes_remark"},
	{"status", "status"},
	{"createdAt", "created_at"},
	{"updatedAt", "updated_at"},
})

// registerFields maps the sign-up form to POST /auth/register.
var registerFields = newFieldTable([][2]string{
	{"businessName", "business_name"},
	{"websiteName", "website_name"},
	{"fullName", "full_name"},
	{"email", "email"},
	{"mobileNumber", "mobile_number"},
	{"password", "password"},
	{"passwordConfirmation", "password_confirmation"},
	{"agreeToTerms", "terms_accepted"},
})

// resetFields maps the reset form to POST /auth/password/reset.
var resetFields = newFieldTable([][2]string{
	{"email", "email"},
	{"token", "token"},
	{"password", "password"},
	{"passwordConfirmation", "password_confirmation"},
})

// identityFields is used where UI and wire names agree.
var identityFields = fieldTable{}
