package controllers

import (
	"net/http"

	"toolshed/app"
	"toolshed/db"

	"github.com/gin-gonic/gin"
)

type ProfileController struct{ *Srv }

func NewProfileController(s *Srv) *ProfileController { return &ProfileController{Srv: s} }

// GET /api/profile
func (pc *ProfileController) Get(c *gin.Context) {
	uid, _ := app.UserID(c)

	u, err := pc.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, app.H{"profile": u})
}

// PUT /api/profile
func (pc *ProfileController) Update(c *gin.Context) {
	uid, _ := app.UserID(c)

	var in struct {
		Username      *string `json:"username"`
		Bio           *string `json:"bio"`
		AvatarURL     *string `json:"avatarUrl"`
		AddressStreet *string `json:"addressStreet"`
		AddressCity   *string `json:"addressCity"`
		AddressState  *string `json:"addressState"`
		AddressZip    *string `json:"addressZip"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	u, err := pc.Repo.UpdateProfile(c.Request.Context(), uid, db.ProfileUpdate{
		Username:      in.Username,
		Bio:           in.Bio,
		AvatarURL:     in.AvatarURL,
		AddressStreet: in.AddressStreet,
		AddressCity:   in.AddressCity,
		AddressState:  in.AddressState,
		AddressZip:    in.AddressZip,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"profile": u})
}

// GET /api/users/:id — public profile with server-side aggregate counts.
func (pc *ProfileController) PublicProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	u, err := pc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		status, msg := HTTPError(err)
		c.JSON(status, app.H{"error": msg})
		return
	}

	lending, err := pc.Repo.LendingCount(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	borrowing, err := pc.Repo.BorrowingCount(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, app.H{
		"user": app.H{
			"id":        u.ID,
			"username":  u.Username,
			"avatarUrl": u.AvatarURL,
			"bio":       u.Bio,
			"name":      u.DisplayName(),
		},
		"lendingCount":   lending,
		"borrowingCount": borrowing,
	})
}
