package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/delta/research-portal/db"
	"github.com/delta/research-portal/internal/access"
	"github.com/delta/research-portal/internal/auth"
	"github.com/delta/research-portal/internal/types"
	"github.com/delta/research-portal/internal/utils"
	"github.com/gin-gonic/gin"
)

// sessionToken extracts the bearer session token from the Authorization
// header, falling back to the session cookie.
func sessionToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := ctx.Cookie("session")

	if err != nil {
		return ""
	}

	return cookie
}

// RequireSession validates the caller's session and stores the resolved
// user on the context. The failure response is uniform regardless of the
// specific cause.
func RequireSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := auth.LookupSession(db.DB, sessionToken(ctx))

		if err != nil {
			if errors.Is(err, auth.ErrInvalidSession) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			} else {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}

// OptionalSession resolves the session if one is presented but lets
// anonymous callers through. Used on public reads that still personalize
// the reported privilege.
func OptionalSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := auth.LookupSession(db.DB, sessionToken(ctx))

		if err == nil {
			ctx.Set(types.ContextUserKey, user)
		}

		ctx.Next()
	}
}

// AnnotateStaff records whether the current user is staff. Handlers behind
// it decide what non-staff callers may do, so the flag is annotated rather
// than enforced here.
func AnnotateStaff() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := auth.LookupSession(db.DB, sessionToken(ctx))

		if err != nil {
			if errors.Is(err, auth.ErrInvalidSession) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			} else {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Set(types.ContextIsStaffKey, user.IsStaff)
		ctx.Next()
	}
}

type projectIDProbe struct {
	ProjectID json.Number `json:"projectId"`
	AltID     json.Number `json:"project_id"`
}

// requestProjectID digs the target project id out of the query string or
// the JSON body. The body is restored so the handler can bind it again.
func requestProjectID(ctx *gin.Context) (uint, bool) {
	if raw := ctx.Query("projectId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	}

	body, err := io.ReadAll(ctx.Request.Body)

	if err != nil {
		return 0, false
	}

	ctx.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	var probe projectIDProbe

	if err := json.Unmarshal(body, &probe); err != nil {
		return 0, false
	}

	raw := probe.ProjectID
	if raw == "" {
		raw = probe.AltID
	}

	id, err := strconv.ParseUint(raw.String(), 10, 64)

	if err != nil {
		return 0, false
	}

	return uint(id), true
}

// ResolveProjectAccess resolves the caller's access level for the project
// referenced by the request and annotates both the level and the loaded
// project. Mutation routes must chain RequireSession before this, so an
// unauthenticated caller never learns whether a project exists.
func ResolveProjectAccess() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		projectID, ok := requestProjectID(ctx)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "projectId is required"})
			return
		}

		// Absent when the route allows anonymous callers.
		user, _ := utils.GetCurrentUser(ctx)

		level, project, err := access.Resolve(db.DB, user, projectID)

		if err != nil {
			if errors.Is(err, access.ErrProjectNotFound) {
				ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Project doesn't exist"})
			} else {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		ctx.Set(types.ContextPrivilegeKey, level)
		ctx.Set(types.ContextProjectKey, project)
		ctx.Next()
	}
}
