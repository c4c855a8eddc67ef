package utils

import (
	"fmt"

	"github.com/delta/research-portal/internal/access"
	"github.com/delta/research-portal/internal/models"
	"github.com/delta/research-portal/internal/types"
	"github.com/gin-gonic/gin"
)

func GetCurrentUser(ctx *gin.Context) (*models.User, error) {
	value, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return nil, fmt.Errorf("user not authenticated")
	}

	user, ok := value.(*models.User)

	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return user, nil
}

// GetAccessLevel returns the level resolved by the access middleware, or
// View when nothing was annotated.
func GetAccessLevel(ctx *gin.Context) access.Level {
	value, exists := ctx.Get(types.ContextPrivilegeKey)

	if !exists {
		return access.View
	}

	level, ok := value.(access.Level)

	if !ok {
		return access.View
	}

	return level
}

// GetCurrentProject returns the project loaded by the access middleware.
func GetCurrentProject(ctx *gin.Context) (*models.Project, error) {
	value, exists := ctx.Get(types.ContextProjectKey)

	if !exists {
		return nil, fmt.Errorf("no project in context")
	}

	project, ok := value.(*models.Project)

	if !ok {
		return nil, fmt.Errorf("invalid project type in context")
	}

	return project, nil
}

func GetIsStaff(ctx *gin.Context) bool {
	value, exists := ctx.Get(types.ContextIsStaffKey)

	if !exists {
		return false
	}

	isStaff, ok := value.(bool)

	return ok && isStaff
}
