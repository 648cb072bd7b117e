package controllers

import (
	"net/http"

	"toolshed/app"
	"toolshed/cache"
	"toolshed/models"

	"github.com/gin-gonic/gin"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// POST /api/tools/:id/requests — request checkout.
func (rc *RequestController) Create(c *gin.Context) {
	uid, _ := app.UserID(c)
	toolID, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := rc.Repo.CreateRequest(c.Request.Context(), toolID, uid)
	countTransition(models.ActionRequested, err)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	rc.Cache.InvalidateTool(c.Request.Context(), toolID)
	c.JSON(http.StatusCreated, req)
}

// POST /api/requests/:id/approve
func (rc *RequestController) Approve(c *gin.Context) {
	uid, _ := app.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := rc.Repo.ApproveRequest(c.Request.Context(), id, uid)
	countTransition(models.ActionApproved, err)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	rc.Cache.InvalidateTool(c.Request.Context(), req.ToolID)
	c.JSON(http.StatusOK, req)
}

// POST /api/requests/:id/reject
func (rc *RequestController) Reject(c *gin.Context) {
	uid, _ := app.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := rc.Repo.RejectRequest(c.Request.Context(), id, uid)
	countTransition(models.ActionRejected, err)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	rc.Cache.InvalidateTool(c.Request.Context(), req.ToolID)
	c.JSON(http.StatusOK, req)
}

// POST /api/requests/:id/return
func (rc *RequestController) Return(c *gin.Context) {
	uid, _ := app.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	req, err := rc.Repo.ReturnRequest(c.Request.Context(), id, uid)
	countTransition(models.ActionReturned, err)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	rc.Cache.InvalidateTool(c.Request.Context(), req.ToolID)
	c.JSON(http.StatusOK, req)
}

// DELETE /api/requests/:id — requester cancels a pending request.
func (rc *RequestController) Cancel(c *gin.Context) {
	uid, _ := app.UserID(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// 先查出 toolID，删除成功后要按名失效缓存
	req, err := rc.Repo.FindRequestByID(c.Request.Context(), id)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}

	err = rc.Repo.CancelRequest(c.Request.Context(), id, uid)
	countTransition(models.ActionCancelled, err)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	rc.Cache.InvalidateTool(c.Request.Context(), req.ToolID)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/tools/:id/requests — owner sees all, others see their own.
func (rc *RequestController) ListForTool(c *gin.Context) {
	uid, _ := app.UserID(c)
	toolID, ok := pathID(c, "id")
	if !ok {
		return
	}

	t, err := rc.Repo.FindToolByID(c.Request.Context(), toolID)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}

	// 只有所有人视角才可缓存：全量列表只有 owner 一个读者
	owner := t.OwnerID == uid
	if owner {
		var cached []models.ToolRequest
		if rc.Cache.Get(c.Request.Context(), cache.ToolRequestsKey(toolID), &cached) {
			c.JSON(http.StatusOK, app.H{"requests": cached})
			return
		}
	}

	requests, err := rc.Repo.ListToolRequests(c.Request.Context(), toolID, uid)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	if owner {
		rc.Cache.Set(c.Request.Context(), cache.ToolRequestsKey(toolID), requests)
	}
	c.JSON(http.StatusOK, app.H{"requests": requests})
}

// GET /api/tools/:id/checkout — the approved request holding the tool, or
// null.
func (rc *RequestController) ActiveCheckout(c *gin.Context) {
	toolID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var cached models.ToolRequest
	if rc.Cache.Get(c.Request.Context(), cache.CheckoutKey(toolID), &cached) {
		c.JSON(http.StatusOK, app.H{"checkout": cached})
		return
	}

	req, err := rc.Repo.ActiveCheckout(c.Request.Context(), toolID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if req != nil {
		rc.Cache.Set(c.Request.Context(), cache.CheckoutKey(toolID), req)
	}
	c.JSON(http.StatusOK, app.H{"checkout": req})
}

// GET /api/requests/mine — the viewer's requests across all tools.
func (rc *RequestController) ListMine(c *gin.Context) {
	uid, _ := app.UserID(c)

	requests, err := rc.Repo.ListUserRequests(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": requests})
}

// GET /api/requests/incoming — pending requests on the viewer's tools.
func (rc *RequestController) ListIncoming(c *gin.Context) {
	uid, _ := app.UserID(c)

	requests, err := rc.Repo.ListOwnerPendingRequests(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": requests})
}
