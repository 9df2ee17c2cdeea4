package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// User is the signed-in user record as returned by the API.
//
// The record is opaque to the client: only a handful of keys are read
// (id, name, email, vendor id). Numbers are kept as json.Number so ids
// survive a round trip through storage without float formatting.
type User map[string]any

// ParseUser decodes a JSON object into a User.
func ParseUser(data []byte) (User, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var u User
	if err := dec.Decode(&u); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.New("user record is not an object")
	}
	return u, nil
}

// Marshal encodes the user record as JSON.
func (u User) Marshal() ([]byte, error) {
	return json.Marshal(map[string]any(u))
}

// ID returns the user id as a string.
func (u User) ID() string {
	id, _ := scalarString(u["id"])
	return id
}

// Email returns the user's email address.
func (u User) Email() string {
	s, _ := u["email"].(string)
	return s
}

// Name returns the best display name available.
func (u User) Name() string {
	for _, key := range []string{"name", "full_name", "fullName"} {
		if s, ok := u[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// VendorID resolves the tenant scope of the user. vendor_id is preferred,
// vendorId is accepted as a fallback; empty and zero values do not count.
func (u User) VendorID() (string, bool) {
	if id, ok := scalarString(u["vendor_id"]); ok {
		return id, true
	}
	return scalarString(u["vendorId"])
}

// scalarString renders a JSON scalar id. Empty strings and zero numbers
// are treated as absent.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		t = strings.TrimSpace(t)
		return t, t != ""
	case json.Number:
		s := t.String()
		if f, err := t.Float64(); err != nil || f == 0 {
			return "", false
		}
		return s, true
	case float64:
		if t == 0 {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), t != 0
	case int64:
		return strconv.FormatInt(t, 10), t != 0
	default:
		return "", false
	}
}

// Session is the authentication state of the client: an opaque bearer
// token and the user record it was issued for.
//
// Session is a value; the session store replaces it wholesale instead of
// mutating fields in place.
type Session struct {
	Token string
	User  User
}

// IsAuthenticated reports whether a token is held. It does not check
// expiry or signature.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// VendorID resolves the tenant scope from the user record.
func (s Session) VendorID() (string, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.VendorID()
}
