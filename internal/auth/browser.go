package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/browser"
)

// openURL is swapped in tests.
var openURL = browser.OpenURL

// LoginURL derives the web sign-in page from the API base, dropping a
// trailing /api segment: http://host/api -> http://host/login.
func LoginURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", serverURL)
	}
	path := strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api")
	u.Path = path + "/login"
	u.RawQuery = ""
	return u.String(), nil
}

// OpenBrowser opens urlStr in the user's browser.
func OpenBrowser(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("cannot open browser: empty URL provided")
	}

	if err := openURL(urlStr); err != nil {
		return fmt.Errorf("failed to open browser automatically, please open this URL manually:\n%s\nError: %w", urlStr, err)
	}

	return nil
}
