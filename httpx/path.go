package httpx

import (
	"net/url"
	"strings"
)

// Path joins resource path segments into an absolute, escaped request path.
// Segments come straight from caller input (logins, key names, dataset
// URNs), so each one is escaped individually.
func Path(parts ...string) string {
	if len(parts) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}
