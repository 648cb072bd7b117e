package controllers

import (
	"errors"
	"net/http"
	"strings"

	"toolshed/app"
	"toolshed/db"
	"toolshed/models"
	"toolshed/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type credentialsReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// POST /api/auth/signup
func (ac *AuthController) SignUp(c *gin.Context) {
	var in credentialsReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := ac.Repo.FindUserByEmail(c.Request.Context(), email); err == nil {
		c.JSON(http.StatusConflict, app.H{"error": "An account with this email already exists"})
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not create account"})
		return
	}
	u := &models.User{ID: uuid.NewString(), Email: &email, PasswordHash: string(hash)}
	if err := ac.Repo.CreateUser(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create session failed"})
		return
	}
	c.JSON(http.StatusCreated, app.H{"user": u})
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in credentialsReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), email)
	if err != nil || u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		// 不区分“邮箱不存在”和“密码不对”
		c.JSON(http.StatusUnauthorized, app.H{"error": "Invalid email or password"})
		return
	}

	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create session failed"})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

type otpSendReq struct {
	Phone string `json:"phone" binding:"required"`
}

// POST /api/auth/otp/send
func (ac *AuthController) SendOTP(c *gin.Context) {
	var in otpSendReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	code, err := ac.OTP.Issue(c.Request.Context(), phone)
	if err != nil {
		if errors.Is(err, session.ErrTooSoon) {
			c.JSON(http.StatusTooManyRequests, app.H{"error": "A code was sent recently. Please wait before retrying."})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	// SMS delivery is an external concern; outside production the code goes
	// to the log so the flow can be exercised end to end.
	if ac.Cfg.Env != "production" {
		ac.Log.Info("otp issued", zap.String("phone", phone), zap.String("code", code))
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

type otpVerifyReq struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6"`
}

// POST /api/auth/otp/verify
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var in otpVerifyReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	if err := ac.OTP.Verify(c.Request.Context(), phone, in.Code); err != nil {
		if errors.Is(err, session.ErrCodeInvalid) {
			c.JSON(http.StatusUnauthorized, app.H{"error": "Invalid or expired verification code"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	u, err := ac.Repo.FindOrCreateUserByPhone(c.Request.Context(), phone, uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "create session failed"})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /api/auth/logout — ?all=true 时注销该用户的所有会话
func (ac *AuthController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		if c.Query("all") == "true" {
			if as, err := ac.AppSess.Get(c.Request.Context(), ck.Value); err == nil {
				_ = ac.AppSess.RevokeAllForUser(c.Request.Context(), as.UserID)
			}
		}
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	uid, ok := app.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	u, err := ac.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// NormalizePhone keeps the original client's rule: accept 10 digits (US,
// gets +1) or 11 digits starting with 1.
func NormalizePhone(input string) (string, error) {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	switch {
	case len(n) == 11 && strings.HasPrefix(n, "1"):
		return "+" + n, nil
	case len(n) == 10:
		return "+1" + n, nil
	default:
		return "", errors.New("Phone number must be 10 digits")
	}
}
