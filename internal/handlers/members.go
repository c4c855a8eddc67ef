package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/delta/research-portal/db"
	"github.com/delta/research-portal/internal/access"
	"github.com/delta/research-portal/internal/models"
	"github.com/delta/research-portal/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MembershipRequest struct {
	UserEmail string `json:"user_id" binding:"required,email"`
	ProjectID uint   `json:"project_id" binding:"required"`
	Role      int    `json:"role" binding:"required"`
}

// membershipTarget validates the request against the store: the caller must
// hold Admin on the project and the user and privilege must exist.
func membershipTarget(ctx *gin.Context) (*models.User, *models.Project, *models.ProjectMemberPrivilege, bool) {
	var body MembershipRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return nil, nil, nil, false
	}

	if utils.GetAccessLevel(ctx) < access.Admin {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "USER DOESN'T HAVE ADMIN ACCESS"})
		return nil, nil, nil, false
	}

	project, err := utils.GetCurrentProject(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "projectId is required"})
		return nil, nil, nil, false
	}

	var user models.User

	if err := db.DB.Where("email = ?", body.UserEmail).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "user does not exist"})
		} else {
			log.Printf("Database error when fetching user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, nil, nil, false
	}

	var privilege models.ProjectMemberPrivilege

	if err := db.DB.Where("code = ?", body.Role).First(&privilege).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "projectmemberprivilege does not exist"})
		} else {
			log.Printf("Database error when fetching privilege: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, nil, nil, false
	}

	return &user, project, &privilege, true
}

// AssignRole sets the privilege of a member, creating the membership row if
// none exists yet. Requires Admin on the target project.
func AssignRole(ctx *gin.Context) {
	user, project, privilege, ok := membershipTarget(ctx)

	if !ok {
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var relationship models.ProjectMemberRelationship

		err := tx.Where("project_id = ? AND user_id = ?", project.ID, user.ID).
			First(&relationship).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			relationship = models.ProjectMemberRelationship{
				ProjectID:   project.ID,
				UserID:      user.ID,
				PrivilegeID: privilege.ID,
			}
			return tx.Create(&relationship).Error
		}

		if err != nil {
			return err
		}

		return tx.Model(&relationship).Update("privilege_id", privilege.ID).Error
	})

	if err != nil {
		log.Printf("Failed to assign role: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	log.Printf("Project(pk=%d) privilege of User(pk=%d) set to %s", project.ID, user.ID, privilege.Name)

	ctx.JSON(http.StatusOK, gin.H{"data": "updated successfully !"})
}

// AddMember inserts a new membership row. An existing relationship is a
// conflict; callers must use AssignRole to change a privilege.
func AddMember(ctx *gin.Context) {
	user, project, privilege, ok := membershipTarget(ctx)

	if !ok {
		return
	}

	// Existence check and insert share one transaction; the composite
	// unique index resolves concurrent adds.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var count int64

		err := tx.Model(&models.ProjectMemberRelationship{}).
			Where("project_id = ? AND user_id = ?", project.ID, user.ID).
			Count(&count).Error

		if err != nil {
			return err
		}

		if count > 0 {
			return gorm.ErrDuplicatedKey
		}

		relationship := models.ProjectMemberRelationship{
			ProjectID:   project.ID,
			UserID:      user.ID,
			PrivilegeID: privilege.ID,
		}

		return tx.Create(&relationship).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "The project-member relationship already exists"})
			return
		}
		log.Printf("Failed to add member: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	log.Printf("Project(pk=%d) member User(pk=%d) added with %s", project.ID, user.ID, privilege.Name)

	ctx.JSON(http.StatusOK, gin.H{"data": "Added Successfully !"})
}
