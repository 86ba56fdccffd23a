package auth

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewCookieJar(t *testing.T) {
	cookies := map[string]string{
		"session": "abc123",
		"token":   "xyz789",
		"blank":   "",
	}

	jar, err := NewCookieJar(Domain, cookies)
	if err != nil {
		t.Fatalf("NewCookieJar failed: %v", err)
	}

	u, err := url.Parse("https://" + Domain + "/User/Actions/113342-")
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}

	got := jar.Cookies(u)
	if len(got) != 2 {
		t.Fatalf("jar.Cookies() returned %d cookies, want 2 (blank values skipped)", len(got))
	}
	values := map[string]string{}
	for _, c := range got {
		values[c.Name] = c.Value
	}
	if values["session"] != "abc123" || values["token"] != "xyz789" {
		t.Errorf("jar cookies = %v", values)
	}
}

func TestNewCookieJarEmpty(t *testing.T) {
	jar, err := NewCookieJar(Domain, map[string]string{})
	if err != nil {
		t.Fatalf("NewCookieJar failed: %v", err)
	}
	if jar == nil {
		t.Fatal("jar should not be nil even with empty cookies")
	}
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(map[string]string{"session": "s1"})
	cookies, err := src.Cookies(context.Background())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}
	if cookies["session"] != "s1" {
		t.Errorf("session = %q, want %q", cookies["session"], "s1")
	}

	// Mutating the returned map must not affect the source.
	cookies["session"] = "tampered"
	again, err := src.Cookies(context.Background())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}
	if again["session"] != "s1" {
		t.Errorf("source mutated through returned map: session = %q", again["session"])
	}
}

func TestStaticSourceEmpty(t *testing.T) {
	src := NewStaticSource(nil)
	cookies, err := src.Cookies(context.Background())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}
	if cookies != nil {
		t.Errorf("cookies = %v, want nil for empty source", cookies)
	}
}

func TestEnvSource(t *testing.T) {
	t.Setenv(EnvVar, "sid=test-session; csrf=test-csrf")

	src := EnvSource{}
	cookies, err := src.Cookies(context.Background())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}

	want := map[string]string{"sid": "test-session", "csrf": "test-csrf"}
	if diff := cmp.Diff(want, cookies); diff != "" {
		t.Errorf("Cookies() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvSourceUnset(t *testing.T) {
	t.Setenv(EnvVar, "")

	src := EnvSource{}
	cookies, err := src.Cookies(context.Background())
	if err != nil {
		t.Fatalf("Cookies failed: %v", err)
	}
	if cookies != nil {
		t.Errorf("cookies = %v, want nil when env var unset", cookies)
	}
}

func TestParseCookiePairs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{
			name: "two pairs",
			in:   "a=1; b=2",
			want: map[string]string{"a": "1", "b": "2"},
		},
		{
			name: "no spaces",
			in:   "a=1;b=2",
			want: map[string]string{"a": "1", "b": "2"},
		},
		{
			name: "value with equals",
			in:   "token=abc=def",
			want: map[string]string{"token": "abc=def"},
		},
		{
			name: "skips malformed pairs",
			in:   "a=1; garbage; =nameless",
			want: map[string]string{"a": "1"},
		},
		{
			name: "empty string",
			in:   "",
			want: nil,
		},
		{
			name: "only garbage",
			in:   "; ;;",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCookiePairs(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseCookiePairs(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

type failingSource struct{}

func (failingSource) Cookies(context.Context) (map[string]string, error) {
	return nil, errors.New("store locked")
}

func TestChainSources(t *testing.T) {
	ctx := context.Background()

	t.Run("first non-empty wins", func(t *testing.T) {
		cookies, err := ChainSources(ctx,
			NewStaticSource(nil),
			NewStaticSource(map[string]string{"sid": "first"}),
			NewStaticSource(map[string]string{"sid": "second"}),
		)
		if err != nil {
			t.Fatalf("ChainSources failed: %v", err)
		}
		if cookies["sid"] != "first" {
			t.Errorf("sid = %q, want %q", cookies["sid"], "first")
		}
	})

	t.Run("all empty", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		cookies, err := ChainSources(ctx, NewStaticSource(nil), EnvSource{})
		if err != nil {
			t.Fatalf("ChainSources failed: %v", err)
		}
		if cookies != nil {
			t.Errorf("cookies = %v, want nil", cookies)
		}
	})

	t.Run("error propagates", func(t *testing.T) {
		if _, err := ChainSources(ctx, failingSource{}); err == nil {
			t.Error("ChainSources() expected error from failing source")
		}
	})
}
