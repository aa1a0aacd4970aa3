package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"linktree-proxy-go/internal/metrics"
	"linktree-proxy-go/internal/model"
	"linktree-proxy-go/internal/service"
)

// Plain-text bodies for the fixed error responses.
const (
	bodyNotFound   = "Profile not found"
	bodyProxyError = "Proxy error"
)

// ProxyHandler mirrors the profile host: it redirects account paths and
// forwards everything else.
type ProxyHandler struct {
	service *service.ProxyService
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler. The metrics parameter is optional.
func NewProxyHandler(svc *service.ProxyService, m *metrics.Metrics, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		metrics: m,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle classifies the request and either redirects it or relays the
// upstream response. Every failure after classification, including a
// panic, becomes a 502 as long as nothing has been written yet.
func (h *ProxyHandler) Handle(c echo.Context) (err error) {
	req := c.Request()
	path, rawQuery := splitRequestURI(req)

	action := h.service.Classify(path, rawQuery)
	if h.metrics != nil {
		h.metrics.ActionsTotal.WithLabelValues(action.Label()).Inc()
	}

	if action.Kind == model.ActionRedirect {
		h.logger.Info("redirecting auth path", "path", path)
		return c.Redirect(http.StatusTemporaryRedirect, action.Target)
	}

	h.logger.Info("proxying request",
		"path", path,
		"target", h.service.Redact(action.Target),
	)

	defer func() {
		if r := recover(); r != nil {
			err = h.mapError(c, fmt.Errorf("panic: %v", r))
		}
	}()

	resp, err := h.service.Forward(&model.ProxyRequest{
		Ctx:      req.Context(),
		Path:     path,
		RawQuery: rawQuery,
		Header:   req.Header,
	}, action.Target)
	if err != nil {
		return h.mapError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	for key, vals := range resp.Header {
		c.Response().Header()[key] = vals
	}
	c.Response().WriteHeader(resp.StatusCode)

	// Asset bodies stream straight from upstream. If io.Copy fails mid-stream
	// the status is already sent and the client sees a truncated body.
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		h.logger.Error("streaming response body",
			"err", h.service.Redact(err.Error()),
			"path", path,
		)
	}

	return nil
}

func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrProfileNotFound) {
		return c.String(http.StatusNotFound, bodyNotFound)
	}

	h.logger.Error("request failed",
		"err", h.service.Redact(err.Error()),
		"path", c.Request().URL.Path,
	)

	if c.Response().Committed {
		return nil
	}
	return c.String(http.StatusBadGateway, bodyProxyError)
}

// splitRequestURI returns the path and raw query exactly as sent on the
// request line, so forwarded targets are never re-encoded.
func splitRequestURI(req *http.Request) (string, string) {
	uri := req.RequestURI
	if uri == "" || uri[0] != '/' {
		uri = req.URL.RequestURI()
	}
	path, query, _ := strings.Cut(uri, "?")
	return path, query
}
