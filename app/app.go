package app

import (
	"context"
	"os"
	"strings"
	"time"

	"toolshed/cache"
	"toolshed/db"
	"toolshed/logger"
	"toolshed/session"
	"toolshed/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	WA     *webauthn.WebAuthn
	Log    *zap.Logger
	Config Config

	appSess *session.AppSessionStore
	otp     *session.OTPStore
	cache   *cache.Store
	images  *storage.ImageStore
}

// Config 从环境变量读取
type Config struct {
	Env         string
	Port        string
	RedisAddr   string
	RedisPwd    string
	WebOrigin   string
	RPID        string
	RPOrigins   []string
	SessionTTL  time.Duration
	CacheTTL    time.Duration
	OTPTTL      time.Duration
	OTPThrottle time.Duration
	UploadDir   string
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }
func (a *App) OTP() *session.OTPStore                { return a.otp }
func (a *App) Cache() *cache.Store                   { return a.cache }
func (a *App) Images() *storage.ImageStore           { return a.images }

func MustNew() *App {
	cfg := loadConfig()
	log := logger.Init(cfg.Env, getenv("LOG_LEVEL", "info"))

	// --- DB: Postgres ---
	dbConn := db.ConnectDB(log)

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// --- WebAuthn RP ---
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Toolshed Passkeys",
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		log.Fatal("webauthn", zap.Error(err))
	}

	images, err := storage.NewImageStore(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatal("image store", zap.Error(err))
	}

	// --- Gin ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	useCORS(r, cfg.WebOrigin)
	r.Use(Metrics())

	a := &App{
		Router: r, DB: dbConn, RDB: rdb, WA: wa, Log: log, Config: cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
		otp:     session.NewOTPStore(rdb, cfg.OTPTTL, cfg.OTPThrottle),
		cache:   cache.New(rdb, cfg.CacheTTL),
		images:  images,
	}
	return a
}

func (a *App) Close() {
	_ = a.RDB.Close()
	_ = a.Log.Sync()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func loadConfig() Config {
	origin := getenv("WEB_ORIGIN", "http://localhost:5173")

	originsCSV := getenv("RP_ORIGINS", origin)
	var origins []string
	for _, o := range strings.Split(originsCSV, ",") {
		if s := strings.TrimSpace(o); s != "" {
			origins = append(origins, s)
		}
	}

	return Config{
		Env:         getenv("APP_ENV", "development"),
		Port:        getenv("PORT", "3001"),
		RedisAddr:   getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:    os.Getenv("REDIS_PASSWORD"),
		WebOrigin:   origin,
		RPID:        getenv("RP_ID", "localhost"),
		RPOrigins:   origins,
		SessionTTL:  getenvDuration("SESSION_TTL", 24*time.Hour),
		CacheTTL:    getenvDuration("CACHE_TTL", cache.DefaultTTL),
		OTPTTL:      getenvDuration("OTP_TTL", 5*time.Minute),
		OTPThrottle: getenvDuration("OTP_THROTTLE", 30*time.Second),
		UploadDir:   getenv("UPLOAD_DIR", "uploads"),
	}
}
