package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/haven-community/haven/middleware"
	"github.com/haven-community/haven/models"
	"github.com/haven-community/haven/utils"
)

// ProfessionalController serves the practitioner directory.
type ProfessionalController struct {
	db *gorm.DB
}

// NewProfessionalController creates a ProfessionalController.
func NewProfessionalController(db *gorm.DB) *ProfessionalController {
	return &ProfessionalController{db: db}
}

// List returns all directory articles, newest-first.
func (p *ProfessionalController) List(ctx *gin.Context) {
	var items []models.Professional
	if err := p.db.WithContext(ctx.Request.Context()).Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "internal server error")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// Create publishes a directory article. Professional or admin only.
func (p *ProfessionalController) Create(ctx *gin.Context) {
	role := ctx.GetString(middleware.ContextUserRoleKey)
	if role != models.RoleProfessional && role != models.RoleAdmin {
		utils.Error(ctx, http.StatusForbidden, 40302, "professional account required")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Title       string `json:"title"`
		Specialties string `json:"specialties"`
		Institution string `json:"institution"`
		Degree      string `json:"degree"`
		Bio         string `json:"bio"`
		Content     string `json:"content"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	fields := map[string]string{
		"name":        req.Name,
		"title":       req.Title,
		"specialties": req.Specialties,
		"institution": req.Institution,
		"degree":      req.Degree,
		"bio":         req.Bio,
		"content":     req.Content,
	}
	for field, value := range fields {
		if strings.TrimSpace(value) == "" {
			utils.Error(ctx, http.StatusBadRequest, 40031, field+" is required")
			return
		}
	}

	item := models.Professional{
		Name:        req.Name,
		Title:       req.Title,
		Specialties: req.Specialties,
		Institution: req.Institution,
		Degree:      req.Degree,
		Bio:         utils.Sanitize(req.Bio),
		Content:     utils.Sanitize(req.Content),
	}
	if err := p.db.WithContext(ctx.Request.Context()).Create(&item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "internal server error")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "professional post added", gin.H{"id": item.ID})
}
