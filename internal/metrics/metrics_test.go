package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_GathersMetrics(t *testing.T) {
	m := New()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	// Should include at least Go runtime and process collectors.
	if len(families) == 0 {
		t.Fatal("expected non-empty metric families from Gather()")
	}

	m.RequestsTotal.WithLabelValues("GET", "200", "/").Inc()
	m.ActionsTotal.WithLabelValues("redirect").Inc()

	families, err = m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"linktree_proxy_http_requests_total": false,
		"linktree_proxy_actions_total":       false,
	}
	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %s in gathered metrics", name)
		}
	}
}

func TestHTMLRewritesCounter(t *testing.T) {
	m := New()
	m.HTMLRewrites.Inc()
	m.HTMLRewrites.Inc()

	if got := testutil.ToFloat64(m.HTMLRewrites); got != 2 {
		t.Errorf("HTMLRewrites = %v, want 2", got)
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"GET", "GET"},
		{"POST", "POST"},
		{"HEAD", "HEAD"},
		{"OPTIONS", "OPTIONS"},
		{"FOOBAR", "other"},
		{"get", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got := NormalizeMethod(tt.method)
			if got != tt.want {
				t.Errorf("NormalizeMethod(%q) = %q, want %q", tt.method, got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/login", "/login"},
		{"/login/extra", "other"},
		{"/register", "/register"},
		{"/admin", "/admin"},
		{"/admin/settings", "/admin"},
		{"/administrator", "/admin"},
		{"/_proxy/healthz", "/_proxy/healthz"},
		{"/_proxy/status", "/_proxy/status"},
		{"/_proxy/metrics", "/_proxy/metrics"},
		{"/vikshan", "other"},
		{"/s/asset.js", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := NormalizePath(tt.path)
			if got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
