package auth

import "strings"

// LoginEndpoint is the backend path that issues tokens.
const LoginEndpoint = "/v1/usuario/login"

var publicEndpoints = []string{
	LoginEndpoint,
}

// NeedsAuthentication reports whether an outbound request to url must carry
// a bearer token. Anything not on the public list needs one.
func NeedsAuthentication(url string) bool {
	for _, endpoint := range publicEndpoints {
		if strings.Contains(url, endpoint) {
			return false
		}
	}
	return true
}

// IsLoginRequest reports whether url targets the login endpoint.
func IsLoginRequest(url string) bool {
	return strings.Contains(url, LoginEndpoint)
}
