package domain

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// passwordSpecials is the set of characters accepted as "special".
const passwordSpecials = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

// MinPasswordLength is the minimum length of a new password.
const MinPasswordLength = 8

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login form locally.
func (c Credentials) Validate() error {
	fields := map[string]string{}
	checkEmail(fields, "email", c.Email)
	if c.Password == "" {
		fields["password"] = "Password is required"
	}
	return fieldsError(fields)
}

// Registration is the sign-up form.
type Registration struct {
	BusinessName         string
	WebsiteName          string
	FullName             string
	Email                string
	MobileNumber         string
	Password             string
	PasswordConfirmation string
	AgreeToTerms         bool
}

// Validate checks required fields, password strength and confirmation.
func (r Registration) Validate() error {
	fields := map[string]string{}
	required := []struct{ key, value, msg string }{
		{"businessName", r.BusinessName, "Business name is required"},
		{"websiteName", r.WebsiteName, "Website name is required"},
		{"fullName", r.FullName, "Full name is required"},
		{"mobileNumber", r.MobileNumber, "Mobile number is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			fields[f.key] = f.msg
		}
	}
	checkEmail(fields, "email", r.Email)
	checkNewPassword(fields, r.Password, r.PasswordConfirmation)
	if !r.AgreeToTerms {
		fields["agreeToTerms"] = "You must agree to the terms and conditions"
	}
	return fieldsError(fields)
}

// PasswordForgot requests a reset link.
type PasswordForgot struct {
	Email string `json:"email"`
}

// Validate checks the email address.
func (p PasswordForgot) Validate() error {
	fields := map[string]string{}
	checkEmail(fields, "email", p.Email)
	return fieldsError(fields)
}

// PasswordReset sets a new password using the token from a reset link.
type PasswordReset struct {
	Email                string
	Token                string
	Password             string
	PasswordConfirmation string
}

// Validate checks the reset link parameters and the new password.
func (p PasswordReset) Validate() error {
	fields := map[string]string{}
	checkEmail(fields, "email", p.Email)
	if strings.TrimSpace(p.Token) == "" {
		fields["token"] = "Invalid or missing reset token"
	}
	checkNewPassword(fields, p.Password, p.PasswordConfirmation)
	return fieldsError(fields)
}

// PasswordWeaknesses lists the strength rules password fails, in display order.
func PasswordWeaknesses(password string) []string {
	var missing []string
	if len(password) < MinPasswordLength {
		missing = append(missing, "at least 8 characters")
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !upper {
		missing = append(missing, "one uppercase letter")
	}
	if !lower {
		missing = append(missing, "one lowercase letter")
	}
	if !digit {
		missing = append(missing, "one number")
	}
	if !special {
		missing = append(missing, "one special character (!@#$%^&*...)")
	}
	return missing
}

func checkEmail(fields map[string]string, key, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		fields[key] = "Email is required"
	case !emailPattern.MatchString(email):
		fields[key] = "Please enter a valid email address"
	}
}

func checkNewPassword(fields map[string]string, password, confirmation string) {
	if password == "" {
		fields["password"] = "Password is required"
	} else if weak := PasswordWeaknesses(password); len(weak) > 0 {
		fields["password"] = "Password must contain " + strings.Join(weak, ", ")
	}
	switch {
	case confirmation == "":
		fields["passwordConfirmation"] = "Password confirmation is required"
	case password != confirmation:
		fields["passwordConfirmation"] = "Passwords do not match"
	}
}

func fieldsError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return ErrValidation.WithFields(fields)
}
