package controllers

import (
	"net/http"

	"toolshed/app"
	"toolshed/cache"
	"toolshed/db"
	"toolshed/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ToolController struct{ *Srv }

func NewToolController(s *Srv) *ToolController { return &ToolController{Srv: s} }

type toolReq struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
	Condition   *string `json:"condition"`
	Category    string  `json:"category"`
}

// POST /api/tools
func (tc *ToolController) Create(c *gin.Context) {
	uid, _ := app.UserID(c)

	var in toolReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Category == "" {
		in.Category = "Other"
	}
	if !models.ValidCategory(in.Category) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown category"})
		return
	}

	t := &models.Tool{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		OwnerID:     uid,
		Status:      models.ToolAvailable,
		Brand:       in.Brand,
		Model:       in.Model,
		Condition:   in.Condition,
		Category:    in.Category,
	}
	if err := tc.Repo.CreateTool(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	tc.Cache.Invalidate(c.Request.Context(), cache.ToolListKey())
	c.JSON(http.StatusCreated, t)
}

// GET /api/tools?q=&category=&status=&ownerId=
func (tc *ToolController) List(c *gin.Context) {
	q := db.ToolsQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		OwnerID:  c.Query("ownerId"),
	}

	// 只有无过滤的全量列表走缓存
	unfiltered := q == db.ToolsQuery{}
	if unfiltered {
		var cached []models.Tool
		if tc.Cache.Get(c.Request.Context(), cache.ToolListKey(), &cached) {
			c.JSON(http.StatusOK, app.H{"tools": cached})
			return
		}
	}

	tools, err := tc.Repo.ListTools(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if unfiltered {
		tc.Cache.Set(c.Request.Context(), cache.ToolListKey(), tools)
	}
	c.JSON(http.StatusOK, app.H{"tools": tools})
}

// GET /api/tools/:id
func (tc *ToolController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var cached models.Tool
	if tc.Cache.Get(c.Request.Context(), cache.ToolKey(id), &cached) {
		c.JSON(http.StatusOK, app.H{"tool": cached})
		return
	}

	t, err := tc.Repo.FindToolByID(c.Request.Context(), id)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	tc.Cache.Set(c.Request.Context(), cache.ToolKey(id), t)
	c.JSON(http.StatusOK, app.H{"tool": t})
}

// PUT /api/tools/:id
func (tc *ToolController) Update(c *gin.Context) {
	uid, _ := app.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		ImageURL    *string `json:"imageUrl"`
		Brand       *string `json:"brand"`
		Model       *string `json:"model"`
		Condition   *string `json:"condition"`
		Category    *string `json:"category"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Category != nil && !models.ValidCategory(*in.Category) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown category"})
		return
	}

	t, err := tc.Repo.UpdateTool(c.Request.Context(), id, uid, db.ToolUpdate{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Brand:       in.Brand,
		Model:       in.Model,
		Condition:   in.Condition,
		Category:    in.Category,
	})
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	tc.Cache.InvalidateTool(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"tool": t})
}

// DELETE /api/tools/:id — refused while active requests exist.
func (tc *ToolController) Delete(c *gin.Context) {
	uid, _ := app.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := tc.Repo.DeleteTool(c.Request.Context(), id, uid); err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	tc.Cache.InvalidateTool(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/tools/:id/activity — owner only.
func (tc *ToolController) Activity(c *gin.Context) {
	uid, _ := app.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := tc.Repo.FindToolByID(c.Request.Context(), id)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	if t.OwnerID != uid {
		c.JSON(http.StatusForbidden, app.H{"error": "You don't have permission to manage this tool"})
		return
	}
	logs, err := tc.Repo.ListToolActivity(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"activity": logs})
}
