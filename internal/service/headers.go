package service

import (
	"net/http"
	"strings"
)

// headerRule names one header and the value used when the source lacks it.
// An empty fallback means the header is omitted when absent.
type headerRule struct {
	name     string
	fallback string
}

// Fallbacks for request headers the mirror passes through from the browser.
const (
	fallbackUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	fallbackAccept         = "*/*"
	fallbackAcceptLanguage = "en-US,en;q=0.9"
)

// passthroughRequestHeaders are copied from the inbound request.
var passthroughRequestHeaders = []headerRule{
	{"User-Agent", fallbackUserAgent},
	{"Accept", fallbackAccept},
	{"Accept-Language", fallbackAcceptLanguage},
}

// defaultContentType is assumed when upstream omits Content-Type. It routes
// the response through the HTML branch.
const defaultContentType = "text/html"

// htmlResponseHeaders are the only upstream headers kept on rewritten HTML.
var htmlResponseHeaders = []headerRule{
	{"Content-Type", defaultContentType},
	{"Cache-Control", "public, max-age=60"},
	{"ETag", ""},
}

// assetResponseHeaders are the only upstream headers kept on streamed assets.
// ETag is deliberately absent: only HTML responses carry it through.
var assetResponseHeaders = []headerRule{
	{"Content-Type", defaultContentType},
	{"Cache-Control", "public, max-age=3600"},
	{"Access-Control-Allow-Origin", ""},
	{"Access-Control-Allow-Methods", ""},
	{"Access-Control-Allow-Headers", ""},
}

// applyHeaderRules copies each ruled header from src into a fresh header,
// substituting the fallback when src has no value. Repeated source fields
// are joined with ", ".
func applyHeaderRules(src http.Header, rules []headerRule) http.Header {
	dst := make(http.Header, len(rules))
	for _, r := range rules {
		if v := strings.Join(src.Values(r.name), ", "); v != "" {
			dst.Set(r.name, v)
		} else if r.fallback != "" {
			dst.Set(r.name, r.fallback)
		}
	}
	return dst
}
