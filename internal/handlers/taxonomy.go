package handlers

import (
	"log"
	"net/http"

	"github.com/delta/research-portal/db"
	"github.com/delta/research-portal/internal/models"
	"github.com/gin-gonic/gin"
)

type DepartmentResponse struct {
	ID        uint   `json:"id"`
	ShortName string `json:"short_name"`
	FullName  string `json:"full_name"`
	ImageURL  string `json:"image_url,omitempty"`
}

type TagResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Department  string `json:"department,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// ListDepartments returns the seeded department catalog.
func ListDepartments(ctx *gin.Context) {
	var departments []models.Department

	if err := db.DB.Find(&departments).Error; err != nil {
		log.Printf("Failed to list departments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve departments"})
		return
	}

	response := []DepartmentResponse{}

	for _, department := range departments {
		response = append(response, DepartmentResponse{
			ID:        department.ID,
			ShortName: department.ShortName,
			FullName:  department.FullName,
			ImageURL:  department.ImageURL,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"data": response})
}

// ListAreasOfResearch returns every area of research.
func ListAreasOfResearch(ctx *gin.Context) {
	var areas []models.AreaOfResearch

	if err := db.DB.Preload("Department").Find(&areas).Error; err != nil {
		log.Printf("Failed to list areas of research: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve areas of research"})
		return
	}

	response := []TagResponse{}

	for _, area := range areas {
		response = append(response, TagResponse{
			ID:          area.ID,
			Name:        area.Name,
			Description: area.Description,
			Department:  area.Department.ShortName,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"data": response})
}

// ListLabs returns every lab.
func ListLabs(ctx *gin.Context) {
	var labs []models.Lab

	if err := db.DB.Preload("Department").Find(&labs).Error; err != nil {
		log.Printf("Failed to list labs: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve labs"})
		return
	}

	response := []TagResponse{}

	for _, lab := range labs {
		response = append(response, TagResponse{
			ID:          lab.ID,
			Name:        lab.Name,
			Description: lab.Description,
			Department:  lab.Department.ShortName,
			ImageURL:    lab.ImageURL,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"data": response})
}

// ListCoes returns every center of excellence.
func ListCoes(ctx *gin.Context) {
	var coes []models.COE

	if err := db.DB.Find(&coes).Error; err != nil {
		log.Printf("Failed to list centers of excellence: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve centers of excellence"})
		return
	}

	response := []TagResponse{}

	for _, coe := range coes {
		response = append(response, TagResponse{
			ID:          coe.ID,
			Name:        coe.Name,
			Description: coe.Description,
			ImageURL:    coe.ImageURL,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"data": response})
}
