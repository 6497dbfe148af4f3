// Utilities for extracting the portal gateway cookie from captured cURL commands.
//
// The Firefly gateway only honours gettoken requests that carry an ASP.NET
// session cookie from a live browser session. The easiest way for users to
// provide one is "Copy as cURL" from browser devtools.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	headerRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	cookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// SessionCookieFromCurlFile reads a file containing a cURL command and extracts
// the ASP.NET_SessionId cookie value.
func SessionCookieFromCurlFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read curl file: %w", err)
	}
	return SessionCookieFromCurl(content)
}

// SessionCookieFromCurl parses a cURL command and extracts the
// ASP.NET_SessionId cookie value from either a -b flag or a Cookie header.
func SessionCookieFromCurl(data []byte) (string, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	var cookieLine string

	if m := cookieRegex.FindStringSubmatch(curlCmd); len(m) > 1 {
		if m[1] != "" {
			cookieLine = m[1]
		} else {
			cookieLine = m[2]
		}
	}

	if cookieLine == "" {
		for _, match := range headerRegex.FindAllStringSubmatch(curlCmd, -1) {
			headerLine := match[1]
			if headerLine == "" {
				headerLine = match[2]
			}
			if strings.HasPrefix(strings.ToLower(headerLine), "cookie:") {
				parts := strings.SplitN(headerLine, ":", 2)
				cookieLine = strings.TrimSpace(parts[1])
				break
			}
		}
	}

	if cookieLine == "" {
		return "", fmt.Errorf("%w: no cookie found in curl command", ErrInvalidInput)
	}

	for _, pair := range strings.Split(cookieLine, ";") {
		pair = strings.TrimSpace(pair)
		if value, ok := strings.CutPrefix(pair, "ASP.NET_SessionId="); ok {
			return value, nil
		}
	}

	return "", fmt.Errorf("%w: no ASP.NET_SessionId cookie in curl command", ErrInvalidInput)
}
