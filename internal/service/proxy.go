// Package service implements path classification and the forwarding
// pipeline for the profile mirror.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"linktree-proxy-go/internal/config"
	"linktree-proxy-go/internal/metrics"
	"linktree-proxy-go/internal/model"
	"linktree-proxy-go/internal/rewrite"
)

// ErrProfileNotFound is returned when the upstream answers 404.
var ErrProfileNotFound = errors.New("profile not found upstream")

// Fetcher issues GET requests to the upstream host.
type Fetcher interface {
	Get(ctx context.Context, url string, header http.Header) (*model.ProxyResponse, error)
}

// ProxyService classifies inbound paths and forwards them to the profile host.
type ProxyService struct {
	fetcher  Fetcher
	rewriter *rewrite.Rewriter
	metrics  *metrics.Metrics
	logger   *slog.Logger

	base     string // scheme://host, no trailing slash
	username string
}

// NewProxyService creates a ProxyService. The metrics parameter is optional.
func NewProxyService(f Fetcher, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*ProxyService, error) {
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream base_url %q is not absolute", cfg.Upstream.BaseURL)
	}
	base := u.Scheme + "://" + u.Host

	return &ProxyService{
		fetcher:  f,
		rewriter: rewrite.New(base, cfg.Profile.CustomDomain),
		metrics:  m,
		logger:   logger.With("component", "proxy_service"),
		base:     base,
		username: cfg.Profile.Username,
	}, nil
}

// Base returns the upstream origin, e.g. "https://linktr.ee".
func (s *ProxyService) Base() string {
	return s.base
}

// Redact hides the configured username in s, for log lines and error
// messages that embed the root target URL.
func (s *ProxyService) Redact(msg string) string {
	return strings.ReplaceAll(msg, s.base+"/"+s.username, s.base+"/<redacted>")
}

// Classify decides what to do with a request for path and rawQuery, both
// exactly as they appeared on the request line. Rules, first match wins:
//
//  1. /admin..., /login, /register redirect to the upstream.
//  2. / forwards to the configured profile.
//  3. anything else forwards verbatim.
//
// The query string is carried onto the target unchanged.
func (s *ProxyService) Classify(path, rawQuery string) model.Action {
	switch {
	case strings.HasPrefix(path, "/admin"), path == "/login", path == "/register":
		return model.Action{Kind: model.ActionRedirect, Target: s.target(path, rawQuery)}
	case path == "/":
		return model.Action{Kind: model.ActionForward, Target: s.target("/"+s.username, rawQuery), Root: true}
	default:
		return model.Action{Kind: model.ActionForward, Target: s.target(path, rawQuery)}
	}
}

func (s *ProxyService) target(path, rawQuery string) string {
	if rawQuery == "" {
		return s.base + path
	}
	return s.base + path + "?" + rawQuery
}

// Forward fetches target and builds the outbound response.
// The caller is responsible for closing the response body.
//
// A 404 from upstream yields ErrProfileNotFound. HTML responses are read in
// full and rewritten; everything else keeps the upstream body as a stream.
// Only allowlisted headers survive either way.
func (s *ProxyService) Forward(pr *model.ProxyRequest, target string) (*model.ProxyResponse, error) {
	s.logger.Debug("forwarding request", "path", pr.Path)

	resp, err := s.fetcher.Get(pr.Ctx, target, s.upstreamHeaders(pr.Header))
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, ErrProfileNotFound
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	if !strings.Contains(contentType, "text/html") {
		return &model.ProxyResponse{
			StatusCode: resp.StatusCode,
			Header:     applyHeaderRules(resp.Header, assetResponseHeaders),
			Body:       resp.Body,
		}, nil
	}

	return s.rewriteHTML(resp)
}

// rewriteHTML buffers an HTML response and applies the rewrite transform.
// It always closes resp.Body.
func (s *ProxyService) rewriteHTML(resp *model.ProxyResponse) (*model.ProxyResponse, error) {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream html: %w", err)
	}

	doc, err := s.rewriter.Rewrite(string(raw))
	if err != nil {
		return nil, fmt.Errorf("rewrite html: %w", err)
	}
	if s.metrics != nil {
		s.metrics.HTMLRewrites.Inc()
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     applyHeaderRules(resp.Header, htmlResponseHeaders),
		Body:       io.NopCloser(strings.NewReader(doc)),
		Rewritten:  true,
	}, nil
}

// upstreamHeaders builds the upstream request headers: the browser's
// identity headers (or fallbacks) plus fixed values that make the request
// look first-party and keep the body uncompressed.
func (s *ProxyService) upstreamHeaders(src http.Header) http.Header {
	dst := applyHeaderRules(src, passthroughRequestHeaders)
	dst.Set("Accept-Encoding", "identity")
	dst.Set("Referer", s.base+"/")
	dst.Set("Origin", s.base)
	return dst
}
