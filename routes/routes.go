package routes

import (
	"time"

	"toolshed/app"
	"toolshed/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	toolCtl := controllers.NewToolController(s)
	reqCtl := controllers.NewRequestController(s)
	profileCtl := controllers.NewProfileController(s)
	uploadCtl := controllers.NewUploadController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// Ops
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 上传的图片（工具照片、头像）
	r.Static("/uploads", a.Images().Dir())

	// ------------------------------
	// Auth
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authCtl.SignUp)
		auth.POST("/login", authCtl.Login)
		auth.POST("/otp/send", authCtl.SendOTP)
		auth.POST("/otp/verify", authCtl.VerifyOTP)
		auth.POST("/logout", authCtl.Logout)
		auth.GET("/me", authMW, seenMW, authCtl.Me)
	}

	// Passkeys
	wa := r.Group("/api/webauthn")
	{
		wa.POST("/register/begin", authMW, s.BeginRegistration)
		wa.POST("/register/finish", authMW, s.FinishRegistration)
		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
	}

	// ------------------------------
	// Tools（浏览公开，写操作要登录）
	// ------------------------------
	r.GET("/api/tools", toolCtl.List)
	r.GET("/api/tools/:id", toolCtl.Get)
	r.GET("/api/tools/:id/checkout", reqCtl.ActiveCheckout)

	toolsAuth := r.Group("/api/tools", authMW, seenMW)
	{
		toolsAuth.POST("", toolCtl.Create)
		toolsAuth.PUT("/:id", toolCtl.Update)
		toolsAuth.DELETE("/:id", toolCtl.Delete)
		toolsAuth.GET("/:id/activity", toolCtl.Activity)
		toolsAuth.GET("/:id/requests", reqCtl.ListForTool)
		toolsAuth.POST("/:id/requests", reqCtl.Create)
	}

	// Requests（生命周期流转）
	requests := r.Group("/api/requests", authMW, seenMW)
	{
		requests.GET("/mine", reqCtl.ListMine)
		requests.GET("/incoming", reqCtl.ListIncoming)
		requests.POST("/:id/approve", reqCtl.Approve)
		requests.POST("/:id/reject", reqCtl.Reject)
		requests.POST("/:id/return", reqCtl.Return)
		requests.DELETE("/:id", reqCtl.Cancel)
	}

	// Profiles
	r.GET("/api/users/:id", profileCtl.PublicProfile)
	profile := r.Group("/api/profile", authMW, seenMW)
	{
		profile.GET("", profileCtl.Get)
		profile.PUT("", profileCtl.Update)
	}

	// Uploads
	r.POST("/api/uploads/:bucket", authMW, uploadCtl.Upload)
}
