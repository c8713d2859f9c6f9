// Package app wires dependencies and exposes every endpoint
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/app/file"
	"github.com/jvincentbasto/my-space/app/root"
	"github.com/jvincentbasto/my-space/app/user"
	"github.com/jvincentbasto/my-space/aws"
	"github.com/jvincentbasto/my-space/config"
	"github.com/jvincentbasto/my-space/db"
	"github.com/jvincentbasto/my-space/internal"
	"github.com/jvincentbasto/my-space/internal/cache"
	"github.com/jvincentbasto/my-space/internal/service"
	"github.com/jvincentbasto/my-space/internal/store"
	"github.com/jvincentbasto/my-space/pkg/middleware"
	"github.com/jvincentbasto/my-space/pkg/security"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// NewRouter builds every dependency from cfg and returns the engine.
// Background jobs stop when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config) (*gin.Engine, error) {
	makeLogger(cfg.App.LogLevel)

	conn, err := db.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	s3, err := aws.NewS3(ctx, aws.Options{
		Bucket:          cfg.Storage.Bucket,
		Region:          cfg.Storage.Region,
		Endpoint:        cfg.Storage.S3Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}

	cacheStore, err := newCacheStore(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	views := cache.NewViews(cacheStore, cfg.Cache.TTL)

	accounts := service.NewAccountService(
		conn,
		security.NewSessionSigner(cfg.Session.Secret),
		service.NewSMTPMailer(service.MailConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Sender:   cfg.Mail.Sender,
			Password: cfg.Mail.Password,
			AppName:  cfg.App.Name,
		}),
		service.AccountOpts{
			OTPTTL:         cfg.OTP.TTL,
			OTPCooldown:    cfg.OTP.Cooldown,
			OTPMaxAttempts: cfg.OTP.MaxAttempts,
			SessionTTL:     cfg.Session.TTL,
			PendingTTL:     cfg.OTP.PendingTTL,
		},
	)

	files := store.NewFileStore(conn)
	urls := &service.URLBuilder{
		Endpoint: cfg.Storage.Endpoint,
		Bucket:   cfg.Storage.Bucket,
		Project:  cfg.Storage.Project,
	}
	uploader := service.NewUploader(files, s3, views, urls, cfg.MaxUploadBytes())

	d := &internal.Deps{
		Config: cfg,
		DB:     conn,
		Users:  service.NewUserService(accounts, store.NewUserStore(conn)),
		Files:  service.NewFileService(files, s3, views, uploader, cfg.QuotaBytes()),
		Views:  views,
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Security.RateLimit,
		Burst:             cfg.Security.RateBurst,
	})
	go limiter.Run(ctx)

	service.TokenCleanup(ctx, cfg.Cleanup.Interval, conn)
	service.AccountCleanup(ctx, cfg.Cleanup.Interval, conn)

	return NewEngine(d, limiter), nil
}

func newCacheStore(ctx context.Context, cfg config.Cache) (persist.CacheStore, error) {
	if cfg.Type != "redis" {
		return persist.NewMemoryStore(cfg.TTL), nil
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Using redis response cache", zap.String("addr", cfg.RedisAddr))

	return cache.NewRedisStore(rdb), nil
}

// NewEngine registers every route on a new engine
func NewEngine(d *internal.Deps, limiter *middleware.RateLimiter) *gin.Engine {
	cfg := d.Config
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 8 << 20

	session := middleware.NewSessionMiddleware(d.Users, cfg.Session.CookieName, true)
	maybeSession := middleware.NewSessionMiddleware(d.Users, cfg.Session.CookieName, false)
	turnstile := middleware.NewTurnstileMiddleware(middleware.TurnstileConfig{
		Enabled: cfg.Turnstile.Enabled,
		Secret:  cfg.Turnstile.SecretToken,
	})
	smallBody := middleware.BodySizeLimiter(cfg.Security.MaxBodySize << 20)
	overview := d.Views.Middleware(cache.Static("/"))

	with := func(h func(*gin.Context, *internal.Deps)) gin.HandlerFunc {
		return func(c *gin.Context) { h(c, d) }
	}

	main := router.Group("/api", limiter.Middleware())
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/dashboard		-> Recent files and usage summary
		main.GET("/dashboard", session, overview, with(file.Dashboard))
	}

	users := main.Group("/users", smallBody)
	{
		// POST /api/users/otp		-> Mails a passcode to an email
		users.POST("/otp", turnstile, with(user.UserSendOTP))

		// POST /api/users		-> Signs up a user and mails a passcode
		users.POST("", turnstile, with(user.UserRegister))

		// POST /api/users/login	-> Mails a passcode to an existing user
		users.POST("/login", turnstile, with(user.UserLogin))

		// POST /api/users/verify	-> Exchanges a passcode for a session cookie
		users.POST("/verify", with(user.UserVerify))

		// GET /api/users/me		-> Returns the logged in user
		users.GET("/me", maybeSession, user.UserFetch)

		// POST /api/users/logout	-> Ends the session and redirects to the login page
		users.POST("/logout", with(user.UserLogout))
	}

	files := main.Group("/files", session)
	{
		// GET /api/files		-> Lists, searches and sorts files
		files.GET("", overview, with(file.FileList))

		// GET /api/files/usage		-> Storage used per file type
		files.GET("/usage", overview, with(file.FileUsage))

		// GET /api/files/category/:category	-> Files of one category page
		files.GET("/category/:category", d.Views.Middleware(func(c *gin.Context) string {
			return "/" + c.Param("category")
		}), with(file.FileCategory))

		// POST /api/files		-> Uploads a file
		files.POST("", middleware.BodySizeLimiter(cfg.MaxUploadBytes()+1<<20), with(file.FileUpload))

		// PATCH /api/files/:id/name	-> Renames a file
		files.PATCH("/:id/name", smallBody, with(file.FileRename))

		// PUT /api/files/:id/users	-> Replaces the emails a file is shared with
		files.PUT("/:id/users", smallBody, with(file.FileShare))

		// DELETE /api/files/:id	-> Deletes a file and its object
		files.DELETE("/:id", with(file.FileDelete))
	}

	objects := router.Group("/storage/buckets/:bucket/files/:id", limiter.Middleware(), session)
	{
		// GET .../view		-> Streams the object inline
		objects.GET("/view", with(file.FileView))

		// GET .../download	-> Streams the object as an attachment
		objects.GET("/download", with(file.FileDownload))
	}

	return router
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
