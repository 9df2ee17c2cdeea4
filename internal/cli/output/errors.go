package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/trakjobs/trakjobs-go/internal/client/apierr"
)

// ErrorText renders err for the terminal. Field errors of a normalized
// error follow its message, one per line, sorted by field.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var ne *apierr.NormalizedError
	if !errors.As(err, &ne) || !ne.HasFieldErrors() {
		return err.Error()
	}

	keys := make([]string, 0, len(ne.FieldErrors))
	for k := range ne.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(ne.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %s", k, ne.FieldErrors[k])
	}
	return b.String()
}
