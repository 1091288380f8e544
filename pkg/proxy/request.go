package proxy

import (
	"fmt"
	"net/url"
)

// Method is the closed set of HTTP verbs the proxy dispatches.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodDelete
)

// String returns the HTTP method name.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// IsMutating reports whether the verb changes remote state.
func (m Method) IsMutating() bool {
	return m != MethodGet
}

// Path is an API path template plus the raw identifiers substituted into it.
//
// Identifiers are kept unescaped until the proxy sends the request, so
// values containing reserved characters (IP blocks such as "1.2.3.0/24")
// stay a single path segment.
type Path struct {
	template string
	args     []any
}

// NewPath builds a path from a fmt template using %s verbs.
//
//	NewPath("/dedicated/server/%s/boot/%s", "ns123.ip-1-2-3.eu", 1122)
func NewPath(template string, args ...any) Path {
	return Path{template: template, args: args}
}

// String returns the path with raw identifiers substituted.
func (p Path) String() string {
	return p.render(func(s string) string { return s })
}

// escaped returns the path with each identifier percent-encoded.
func (p Path) escaped() string {
	return p.render(url.PathEscape)
}

// render formats every identifier with its default format, passes it
// through enc and fills the template. %s then works for ints too.
func (p Path) render(enc func(string) string) string {
	if len(p.args) == 0 {
		return p.template
	}
	args := make([]any, len(p.args))
	for i, a := range p.args {
		args[i] = enc(fmt.Sprint(a))
	}
	return fmt.Sprintf(p.template, args...)
}

// Request describes one logical API call.
type Request struct {
	Method Method
	Path   Path

	// Params is sent as the query string. Only used by GET.
	Params url.Values

	// Body is JSON-encoded for mutating calls. nil sends no body.
	Body any
}
