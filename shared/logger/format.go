package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Pretty renders a request payload as indented JSON for trace logs.
// Values JSON can't represent are printed with %+v instead.
func Pretty(payload any) string {
	buf := &bytes.Buffer{}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	err := enc.Encode(payload)
	if err != nil {
		return fmt.Sprintf("%+v", payload)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}
