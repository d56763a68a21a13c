package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: infrastructure
// endpoints and the credential exchange itself.
var publicPaths = map[string]bool{
	"/health":                  true,
	"/api/v1/auth/login":       true,
	"/api/v1/auth/register":    true,
	"/api/v1/auth/demo-login":  true,
}

// Skipper returns true for requests whose path should skip authentication.
// Provider public profiles are readable without credentials so booking pages
// can render them.
func Skipper(c echo.Context) bool {
	path := c.Path()
	if publicPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/api/v1/providers/") && strings.HasSuffix(path, "/public-profile")
}
