package env

import (
	"net/url"
	"strings"
)

// RedactSecret masks a credential, showing only the first 4 and
// last 4 characters.
func RedactSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// RedactURL masks credentials in a URL string.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User == nil {
		return u.String()
	}
	password, hasPassword := u.User.Password()
	if !hasPassword {
		return u.String()
	}

	// The mask is spliced in by hand: url.UserPassword would
	// escape every star to %2A.
	userinfo := url.User(u.User.Username()).String() + ":" + RedactSecret(password) + "@"
	u.User = nil
	s := u.String()
	if i := strings.Index(s, "//"); i >= 0 {
		return s[:i+2] + userinfo + s[i+2:]
	}
	return s
}

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"x-api-key":           true,
	"api-key":             true,
	"x-auth-token":        true,
	"cookie":              true,
	"set-cookie":          true,
	"proxy-authorization": true,
}

// RedactHeaders masks sensitive header values.
func RedactHeaders(headers map[string]string) map[string]string {
	result := make(map[string]string, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[strings.ToLower(k)] {
			result[k] = RedactSecret(v)
		} else {
			result[k] = v
		}
	}
	return result
}
