package htmlutil

import (
	"testing"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"5510", 5510},
		{"5,510", 5510},
		{"1,234,567", 1234567},
		{"  42  ", 42},
		{"12.0", 12},
		{"3.9", 3},
		{"", 0},
		{"-", 0},
		{"n/a", 0},
		{"-7", 0},
		{"1 024", 1024},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseCount(tt.text)
			if got != tt.want {
				t.Errorf("ParseCount(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestFirstInt(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"1234天", 1234},
		{"已注册 987 天", 987},
		{"no digits here", 0},
		{"", 0},
		{"3 of 12", 3},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := FirstInt(tt.text)
			if got != tt.want {
				t.Errorf("FirstInt(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "title tag",
			html: `<html><head><title>Cea - Quicker</title></head><body></body></html>`,
			want: "Cea - Quicker",
		},
		{
			name: "og:title fallback",
			html: `<html><head><meta property="og:title" content="Cea"></head><body></body></html>`,
			want: "Cea",
		},
		{
			name: "h1 fallback",
			html: `<html><body><h1>Cea</h1></body></html>`,
			want: "Cea",
		},
		{
			name: "entities decoded",
			html: `<title>Tom &amp; Jerry</title>`,
			want: "Tom & Jerry",
		},
		{
			name: "nothing",
			html: `<html><body><p>hi</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.html)
			if got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tags removed", "<p>hello <b>world</b></p>", "hello world"},
		{"entities", "a &lt;b&gt; c", "a <b> c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripTags(tt.html)
			if got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}
