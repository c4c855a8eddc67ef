package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/delta/research-portal/db"
	"github.com/delta/research-portal/internal/access"
	"github.com/delta/research-portal/internal/models"
	"github.com/delta/research-portal/internal/search"
	"github.com/delta/research-portal/internal/services"
	"github.com/delta/research-portal/internal/types"
	"github.com/delta/research-portal/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name       string   `json:"name" binding:"required"`
	Abstract   string   `json:"abstract"`
	PaperLink  string   `json:"paperLink" binding:"required"`
	Head       string   `json:"head" binding:"required,email"`
	Department string   `json:"department" binding:"required"`
	Aor        []string `json:"aor"`
	Labs       []string `json:"labs"`
	Coes       []string `json:"coes"`
	Tags       []string `json:"tags"`
}

type WriteProjectRequest struct {
	ProjectID uint   `json:"projectId" binding:"required"`
	Abstract  string `json:"abstract"`
	PaperLink string `json:"paperLink" binding:"required"`
}

type EditProjectRequest struct {
	ProjectID uint     `json:"projectId" binding:"required"`
	Name      string   `json:"name"`
	Abstract  string   `json:"abstract"`
	PaperLink string   `json:"paperLink" binding:"required"`
	Aor       []string `json:"aor"`
	Labs      []string `json:"labs"`
	Coes      []string `json:"coes"`
	Tags      []string `json:"tags"`
}

func decodeTags(raw datatypes.JSON) []string {
	tags := []string{}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tags); err != nil {
			return []string{}
		}
	}

	return tags
}

func encodeTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}

	raw, err := json.Marshal(tags)

	if err != nil {
		return datatypes.JSON("[]")
	}

	return datatypes.JSON(raw)
}

func projectResponse(project *models.Project) types.ProjectResponse {
	aor := []string{}
	for _, tag := range project.AorTags {
		aor = append(aor, tag.Name)
	}

	labs := []string{}
	for _, tag := range project.LabTags {
		labs = append(labs, tag.Name)
	}

	coes := []string{}
	for _, tag := range project.CoeTags {
		coes = append(coes, tag.Name)
	}

	return types.ProjectResponse{
		ID:         project.ID,
		Name:       project.Name,
		Abstract:   project.Abstract,
		PaperLink:  project.PaperLink,
		Department: project.Department.ShortName,
		HeadID:     project.HeadID,
		HeadName:   project.Head.Name,
		AorTags:    aor,
		LabTags:    labs,
		CoeTags:    coes,
		Tags:       decodeTags(project.Tags),
	}
}

func preloadProjects(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Department").
		Preload("Head").
		Preload("AorTags").
		Preload("LabTags").
		Preload("CoeTags")
}

// ListProjects returns every project. Projects are public reads.
func ListProjects(ctx *gin.Context) {
	var projects []models.Project

	if err := preloadProjects(db.DB).Find(&projects).Error; err != nil {
		log.Printf("Failed to list projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := []types.ProjectResponse{}

	for i := range projects {
		response = append(response, projectResponse(&projects[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"data": response})
}

// GetProject returns one project with its member list, plus the caller's
// resolved privilege on it.
func GetProject(ctx *gin.Context) {
	annotated, err := utils.GetCurrentProject(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "projectId is required"})
		return
	}

	var project models.Project

	if err := preloadProjects(db.DB).First(&project, annotated.ID).Error; err != nil {
		log.Printf("Failed to load project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	var relationships []models.ProjectMemberRelationship

	err = db.DB.Preload("User").Preload("User.Department").Preload("Privilege").
		Where("project_id = ?", project.ID).
		Find(&relationships).Error

	if err != nil {
		log.Printf("Failed to load project members: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	members := []types.MemberResponse{}

	for _, relationship := range relationships {
		members = append(members, types.MemberResponse{
			UserResponse: types.UserResponse{
				ID:         relationship.User.ID,
				Name:       relationship.User.Name,
				Email:      relationship.User.Email,
				IsStaff:    relationship.User.IsStaff,
				IsVerified: relationship.User.IsVerified,
				Department: relationship.User.Department.ShortName,
				ImageURL:   relationship.User.ImageURL,
			},
			Permission: relationship.Privilege.Name,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": types.ProjectDetailResponse{
			ProjectResponse: projectResponse(&project),
			Members:         members,
		},
		"privilege": utils.GetAccessLevel(ctx).String(),
	})
}

// GetPrivilege echoes the access level resolved by the middleware.
func GetPrivilege(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"data": utils.GetAccessLevel(ctx).String()})
}

// SearchProjects filters projects on name, department, area of research,
// lab, center of excellence, free tag and head name. Matching is substring,
// case- and diacritic-insensitive; empty parameters match everything.
func SearchProjects(ctx *gin.Context) {
	name := ctx.Query("projectName")
	department := ctx.Query("department")
	aor := ctx.Query("aor")
	lab := ctx.Query("lab")
	coe := ctx.Query("coe")
	tag := ctx.Query("tag")
	headName := ctx.Query("headName")

	var projects []models.Project

	if err := preloadProjects(db.DB).Find(&projects).Error; err != nil {
		log.Printf("Failed to search projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	matchTagSet := func(needle string, names []string) bool {
		if needle == "" {
			return true
		}
		for _, candidate := range names {
			if search.Contains(candidate, needle) {
				return true
			}
		}
		return false
	}

	response := []types.ProjectResponse{}

	for i := range projects {
		candidate := projectResponse(&projects[i])

		if !search.Contains(candidate.Name, name) ||
			!search.Contains(candidate.Department, department) ||
			!search.Contains(candidate.HeadName, headName) ||
			!matchTagSet(aor, candidate.AorTags) ||
			!matchTagSet(lab, candidate.LabTags) ||
			!matchTagSet(coe, candidate.CoeTags) ||
			!matchTagSet(tag, candidate.Tags) {
			continue
		}

		response = append(response, candidate)
	}

	ctx.JSON(http.StatusOK, gin.H{"data": response})
}

func findAreasOfResearch(tx *gorm.DB, names []string) ([]models.AreaOfResearch, bool) {
	if len(names) == 0 {
		return []models.AreaOfResearch{}, true
	}
	var rows []models.AreaOfResearch
	if err := tx.Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, false
	}
	return rows, len(rows) == len(names)
}

func findLabs(tx *gorm.DB, names []string) ([]models.Lab, bool) {
	if len(names) == 0 {
		return []models.Lab{}, true
	}
	var rows []models.Lab
	if err := tx.Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, false
	}
	return rows, len(rows) == len(names)
}

func findCoes(tx *gorm.DB, names []string) ([]models.COE, bool) {
	if len(names) == 0 {
		return []models.COE{}, true
	}
	var rows []models.COE
	if err := tx.Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, false
	}
	return rows, len(rows) == len(names)
}

// CreateProject inserts a project and the Admin membership row for its head
// in one transaction. Only staff users may create projects, and only a
// staff user may head one.
func CreateProject(ctx *gin.Context) {
	if !utils.GetIsStaff(ctx) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "PERMISSION DENIED TO CREATE PROJECTS"})
		return
	}

	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var head models.User

	if err := db.DB.Where("email = ?", body.Head).First(&head).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "User does not exist"})
		} else {
			log.Printf("Database error when fetching head: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if !head.IsStaff {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Project head must be a staff user"})
		return
	}

	// Best-effort pre-checks; the unique indexes settle races.
	var count int64

	db.DB.Model(&models.Project{}).Where("paper_link = ?", body.PaperLink).Count(&count)
	if count > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Google scholar's link already exists"})
		return
	}

	db.DB.Model(&models.Project{}).Where("name = ?", body.Name).Count(&count)
	if count > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "A project with the same name exists! Please switch to a new project name"})
		return
	}

	var department models.Department

	if err := db.DB.Where("short_name = ?", body.Department).First(&department).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Department doesn't exist"})
		} else {
			log.Printf("Database error when fetching department: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	aorRows, ok := findAreasOfResearch(db.DB, body.Aor)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please select from the given areas of research"})
		return
	}

	labRows, ok := findLabs(db.DB, body.Labs)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please select from the given labs"})
		return
	}

	coeRows, ok := findCoes(db.DB, body.Coes)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please select from the given centers of excellence"})
		return
	}

	var adminPrivilege models.ProjectMemberPrivilege

	if err := db.DB.Where("code = ?", models.PrivilegeCodeAdmin).First(&adminPrivilege).Error; err != nil {
		log.Printf("Privilege catalog missing Admin row: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	project := models.Project{
		Name:         body.Name,
		Abstract:     body.Abstract,
		PaperLink:    body.PaperLink,
		DepartmentID: department.ID,
		HeadID:       head.ID,
		AorTags:      aorRows,
		LabTags:      labRows,
		CoeTags:      coeRows,
		Tags:         encodeTags(body.Tags),
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		relationship := models.ProjectMemberRelationship{
			ProjectID:   project.ID,
			UserID:      head.ID,
			PrivilegeID: adminPrivilege.ID,
		}

		return tx.Create(&relationship).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Google scholar's link already exists"})
			return
		}
		log.Printf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Project creation failed"})
		return
	}

	log.Printf("Project(name=%s) creation successful", project.Name)

	if !services.SendProjectCreationEmail(db.DB, &project) {
		log.Printf("Project(name=%s) creation mail dispatch failed", project.Name)
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": "Project created successfully!"})
}

// WriteProject updates the abstract and paper link. Requires Write access.
func WriteProject(ctx *gin.Context) {
	var body WriteProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if utils.GetAccessLevel(ctx) < access.Write {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "USER DOESN'T HAVE WRITE ACCESS"})
		return
	}

	project, err := utils.GetCurrentProject(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "projectId is required"})
		return
	}

	var count int64

	db.DB.Model(&models.Project{}).
		Where("paper_link = ? AND id != ?", body.PaperLink, project.ID).
		Count(&count)

	if count > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Google scholar's link already exists"})
		return
	}

	updates := map[string]interface{}{
		"abstract":   body.Abstract,
		"paper_link": body.PaperLink,
	}

	if err := db.DB.Model(project).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Google scholar's link already exists"})
			return
		}
		log.Printf("Failed to update project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Project update failed"})
		return
	}

	log.Printf("Project(name=%s) update successful", project.Name)

	ctx.JSON(http.StatusOK, gin.H{"data": "Project updated successfully!"})
}

// EditProject updates the abstract, paper link and tag sets. Requires Edit
// access; changing the name additionally requires Admin.
func EditProject(ctx *gin.Context) {
	var body EditProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	level := utils.GetAccessLevel(ctx)

	if level < access.Edit {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "USER DOESN'T HAVE EDIT ACCESS"})
		return
	}

	project, err := utils.GetCurrentProject(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "projectId is required"})
		return
	}

	renaming := body.Name != "" && body.Name != project.Name

	if renaming && level < access.Admin {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "USER DOESN'T HAVE ADMIN ACCESS"})
		return
	}

	var count int64

	db.DB.Model(&models.Project{}).
		Where("paper_link = ? AND id != ?", body.PaperLink, project.ID).
		Count(&count)

	if count > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Google scholar's link already exists"})
		return
	}

	if renaming {
		db.DB.Model(&models.Project{}).
			Where("name = ? AND id != ?", body.Name, project.ID).
			Count(&count)

		if count > 0 {
			ctx.JSON(http.StatusConflict, gin.H{"error": "A project with the same name exists! Please switch to a new project name"})
			return
		}
	}

	aorRows, ok := findAreasOfResearch(db.DB, body.Aor)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please select from the given areas of research"})
		return
	}

	labRows, ok := findLabs(db.DB, body.Labs)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please select from the given labs"})
		return
	}

	coeRows, ok := findCoes(db.DB, body.Coes)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please select from the given centers of excellence"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"abstract":   body.Abstract,
			"paper_link": body.PaperLink,
			"tags":       encodeTags(body.Tags),
		}

		if renaming {
			updates["name"] = body.Name
		}

		if err := tx.Model(project).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(project).Association("AorTags").Replace(aorRows); err != nil {
			return err
		}

		if err := tx.Model(project).Association("LabTags").Replace(labRows); err != nil {
			return err
		}

		return tx.Model(project).Association("CoeTags").Replace(coeRows)
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Google scholar's link already exists"})
			return
		}
		log.Printf("Failed to edit project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Project update failed"})
		return
	}

	log.Printf("Project(name=%s) update successful", project.Name)

	if !services.SendProjectEditEmail(db.DB, project) {
		log.Printf("Project(name=%s) edit mail dispatch failed", project.Name)
	}

	ctx.JSON(http.StatusOK, gin.H{"data": "Project updated successfully!"})
}
