package auth

import (
	"context"
	"os"
	"strings"
)

// EnvVar is the environment variable holding session cookies as a
// semicolon-separated "name=value" list, matching browser devtools copy.
const EnvVar = "QUICKERSTAT_COOKIES"

// EnvSource reads cookies from the QUICKERSTAT_COOKIES environment variable.
type EnvSource struct{}

// Cookies returns cookies parsed from the environment.
func (EnvSource) Cookies(_ context.Context) (map[string]string, error) {
	cookies := ParseCookiePairs(os.Getenv(EnvVar))
	if len(cookies) == 0 {
		return nil, nil //nolint:nilnil // no env var set is not an error
	}
	return cookies, nil
}

// ParseCookiePairs parses a "name=value; name2=value2" cookie string.
// Pairs without an '=' or with an empty name are skipped.
func ParseCookiePairs(s string) map[string]string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	cookies := make(map[string]string)
	for pair := range strings.SplitSeq(s, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cookies[name] = strings.TrimSpace(value)
	}

	if len(cookies) == 0 {
		return nil
	}
	return cookies
}
