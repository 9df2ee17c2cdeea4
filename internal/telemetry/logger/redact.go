package logger

import (
	"log/slog"
	"strings"
)

const redactedValue = "***REDACTED***"

// secretKeyParts mark attribute keys whose values are never logged.
var secretKeyParts = []string{"password", "secret", "token", "key", "credential", "auth", "bearer"}

// secretPrefixes mark values that are masked whatever their key: an
// Authorization header and a JWT (base64url of `{"`).
var secretPrefixes = []string{"Bearer ", "eyJ"}

// redactSensitive masks credentials in a, recursing into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i := range attrs {
			out[i] = redactSensitive(attrs[i])
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindString:
		s := a.Value.String()
		if s == "" {
			return a
		}
		for _, p := range secretPrefixes {
			if strings.HasPrefix(s, p) {
				return slog.String(a.Key, mask(s, p))
			}
		}
		if secretKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}
	return a
}

func secretKey(key string) bool {
	key = strings.ToLower(key)
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

// mask keeps prefix plus three characters at each end of the rest, or
// only prefix when the rest is too short to hint at.
func mask(s, prefix string) string {
	rest := s[len(prefix):]
	if len(rest) <= 6 {
		return prefix + "***"
	}
	return prefix + rest[:3] + "..." + rest[len(rest)-3:]
}
