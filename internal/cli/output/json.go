package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes indented JSON. HTML escaping is off so logo URLs
// with query strings print as they were returned.
type JSONFormatter struct{}

func (JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
