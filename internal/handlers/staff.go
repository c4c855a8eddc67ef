package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/delta/research-portal/db"
	"github.com/delta/research-portal/internal/models"
	"github.com/delta/research-portal/internal/search"
	"github.com/delta/research-portal/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func userResponse(user *models.User) types.UserResponse {
	return types.UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		IsStaff:    user.IsStaff,
		IsVerified: user.IsVerified,
		Department: user.Department.ShortName,
		ImageURL:   user.ImageURL,
	}
}

// ListStaff returns every verified staff user.
func ListStaff(ctx *gin.Context) {
	var users []models.User

	err := db.DB.Preload("Department").
		Where("is_staff = ? AND is_verified = ?", true, true).
		Find(&users).Error

	if err != nil {
		log.Printf("Failed to list staff: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Professors of given description not found"})
		return
	}

	response := []types.UserResponse{}

	for i := range users {
		response = append(response, userResponse(&users[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"data": response})
}

// SearchStaff filters staff users by name, substring and fold-insensitive.
func SearchStaff(ctx *gin.Context) {
	name := ctx.Query("professor")

	var users []models.User

	err := db.DB.Preload("Department").
		Where("is_staff = ?", true).
		Find(&users).Error

	if err != nil {
		log.Printf("Failed to search staff: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Professors of given description not found"})
		return
	}

	response := []types.UserResponse{}

	for i := range users {
		if !search.Contains(users[i].Name, name) {
			continue
		}
		response = append(response, userResponse(&users[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"data": response})
}

type profileProject struct {
	Data   types.ProjectResponse `json:"data"`
	Access string                `json:"access"`
}

// GetProfile aggregates a user's page: their record, the projects they
// administer, the projects they merely belong to, the tag sets across all
// of them, and the scholars working under their administered projects.
func GetProfile(ctx *gin.Context) {
	email := ctx.Query("email")

	var profile models.User

	if err := db.DB.Preload("Department").Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "profile does not exist"})
		} else {
			log.Printf("Failed to load profile: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	var relationships []models.ProjectMemberRelationship

	err := db.DB.Preload("Privilege").
		Where("user_id = ?", profile.ID).
		Find(&relationships).Error

	if err != nil {
		log.Printf("Failed to load memberships: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	adminProjects := []types.ProjectResponse{}
	otherProjects := []profileProject{}
	scholars := []types.UserResponse{}

	seenAor := map[string]bool{}
	seenLab := map[string]bool{}
	seenCoe := map[string]bool{}
	seenScholar := map[uint]bool{}
	aors := []string{}
	labs := []string{}
	coes := []string{}

	collect := func(names []string, seen map[string]bool, into *[]string) {
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				*into = append(*into, name)
			}
		}
	}

	for _, relationship := range relationships {
		var project models.Project

		if err := preloadProjects(db.DB).First(&project, relationship.ProjectID).Error; err != nil {
			continue
		}

		response := projectResponse(&project)

		collect(response.AorTags, seenAor, &aors)
		collect(response.LabTags, seenLab, &labs)
		collect(response.CoeTags, seenCoe, &coes)

		if relationship.Privilege.Code == models.PrivilegeCodeAdmin {
			adminProjects = append(adminProjects, response)

			var members []models.ProjectMemberRelationship

			err := db.DB.Preload("User").Preload("User.Department").
				Where("project_id = ?", project.ID).
				Find(&members).Error

			if err != nil {
				continue
			}

			for _, member := range members {
				if member.User.IsStaff || member.User.ID == profile.ID || seenScholar[member.User.ID] {
					continue
				}
				seenScholar[member.User.ID] = true
				scholars = append(scholars, userResponse(&member.User))
			}
		} else {
			otherProjects = append(otherProjects, profileProject{
				Data:   response,
				Access: relationship.Privilege.Name,
			})
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data":               userResponse(&profile),
		"scholars":           scholars,
		"aors":               aors,
		"labs":               labs,
		"coes":               coes,
		"projects":           adminProjects,
		"non_admin_projects": otherProjects,
	})
}
