// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"
)

// ActionKind is the outcome of classifying an inbound path.
type ActionKind int

const (
	// ActionForward fetches Target upstream and relays the response.
	ActionForward ActionKind = iota
	// ActionRedirect answers with a 307 to Target without contacting upstream.
	ActionRedirect
)

// String returns the metrics label for the kind.
func (k ActionKind) String() string {
	switch k {
	case ActionRedirect:
		return "redirect"
	default:
		return "forward"
	}
}

// Action is what the proxy does with one inbound request.
type Action struct {
	Kind ActionKind
	// Target is the absolute upstream URL.
	Target string
	// Root is set when the request was for "/" and Target names the configured profile.
	Root bool
}

// Label returns the bounded metrics label for the action.
func (a Action) Label() string {
	if a.Kind == ActionForward && a.Root {
		return "forward_root"
	}
	return a.Kind.String()
}

// ProxyRequest represents a client request to be forwarded upstream.
type ProxyRequest struct {
	Ctx context.Context
	// Path and RawQuery are taken verbatim from the request line.
	Path     string
	RawQuery string
	Header   http.Header
}

// ProxyResponse is the outbound response built from an upstream response.
// Header holds only allowlisted fields. Body is either the rewritten HTML
// document or the upstream stream itself.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
	// Rewritten is set when Body went through the HTML rewrite transform.
	Rewritten bool
}
