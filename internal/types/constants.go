package types

import (
	"os"
	"strings"
)

// Context keys used by the middleware chain to annotate a request once so
// handlers never re-derive authorization state.
const (
	ContextUserKey      = "user"
	ContextIsStaffKey   = "is_staff"
	ContextPrivilegeKey = "access_privilege"
	ContextProjectKey   = "project"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("FRONTEND_BASE_URL"); clientURL != "" {
		origins = append(origins, strings.TrimSuffix(clientURL, "/"))
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
