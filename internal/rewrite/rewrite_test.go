package rewrite

import (
	"strings"
	"testing"
)

func TestRewrite_Preconnect(t *testing.T) {
	r := New("https://linktr.ee", "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single hint",
			in:   `<link rel="preconnect" href="/" crossorigin>`,
			want: `<link rel="preconnect" href="https://linktr.ee/" crossorigin>`,
		},
		{
			name: "every occurrence",
			in:   `<a href="/" crossorigin></a><b href="/" crossorigin></b>`,
			want: `<a href="https://linktr.ee/" crossorigin></a><b href="https://linktr.ee/" crossorigin></b>`,
		},
		{
			name: "relative link without crossorigin untouched",
			in:   `<a href="/">home</a>`,
			want: `<a href="/">home</a>`,
		},
		{
			name: "other relative paths untouched",
			in:   `<link href="/fonts/a.woff2" crossorigin><script src="/s/app.js"></script>`,
			want: `<link href="/fonts/a.woff2" crossorigin><script src="/s/app.js"></script>`,
		},
		{
			name: "empty document",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Rewrite(tt.in)
			if err != nil {
				t.Fatalf("Rewrite() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Rewrite() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewrite_PreservesOtherBytes(t *testing.T) {
	r := New("https://linktr.ee/", "")

	prefix := "<!DOCTYPE html>\n<html><head>\r\n\t<meta charset=\"utf-8\">  "
	suffix := "\n<link rel=\"canonical\" href=\"https://linktr.ee/someone\"/>é</head></html>"
	in := prefix + `<link rel="preconnect" href="/" crossorigin/>` + suffix

	got, err := r.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	want := prefix + `<link rel="preconnect" href="https://linktr.ee/" crossorigin/>` + suffix
	if got != want {
		t.Errorf("Rewrite() = %q, want %q", got, want)
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	r := New("https://linktr.ee", "")
	in := `<link rel="preconnect" href="/" crossorigin>`

	once, err := r.Rewrite(in)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := r.Rewrite(once)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Errorf("second Rewrite() = %q, want %q", twice, once)
	}
}

func TestRewrite_Canonical(t *testing.T) {
	r := New("https://linktr.ee", "https://links.example.com")

	in := `<html><head>` +
		`<link rel="canonical" href="https://linktr.ee/someone"/>` +
		`</head><body><a href="https://linktr.ee/someone">me</a></body></html>`

	got, err := r.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	want := `<html><head>` +
		`<link rel="canonical" href="https://links.example.com"/>` +
		`</head><body><a href="https://linktr.ee/someone">me</a></body></html>`
	if got != want {
		t.Errorf("Rewrite() = %q, want %q", got, want)
	}
}

func TestRewrite_CanonicalAttributeOrder(t *testing.T) {
	r := New("https://linktr.ee", "https://links.example.com")

	in := `<head><link href="https://linktr.ee/someone" rel="canonical"></head>`
	got, err := r.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if !strings.Contains(got, `href="https://links.example.com"`) {
		t.Errorf("Rewrite() = %q, want canonical href replaced", got)
	}
}

func TestRewrite_CanonicalForeignHostUntouched(t *testing.T) {
	r := New("https://linktr.ee", "https://links.example.com")

	in := `<head><link rel="canonical" href="https://other.example.org/page"></head>`
	got, err := r.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != in {
		t.Errorf("Rewrite() = %q, want unchanged", got)
	}
}

func TestRewrite_CanonicalDisabledByDefault(t *testing.T) {
	r := New("https://linktr.ee", "")

	in := `<head><link rel="canonical" href="https://linktr.ee/someone"></head>`
	got, err := r.Rewrite(in)
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != in {
		t.Errorf("Rewrite() = %q, want unchanged", got)
	}
}
