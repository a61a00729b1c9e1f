// Package render writes board data for terminals.
package render

import (
	"encoding/json"
	"io"
)

type Options struct {
	Color      bool
	PrettyJSON bool
}

// JSON writes v as one JSON document.
func JSON(w io.Writer, v any, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
