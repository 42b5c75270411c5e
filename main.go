package main

import (
	"chequeai/auth"
	"chequeai/config"
	"chequeai/db"
	"chequeai/gemini"
	"chequeai/handlers"
	"chequeai/metrics"
	"chequeai/models"
	"chequeai/processing"
	"chequeai/storage"
	"chequeai/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chequeai",
		Short: "Bank cheque extraction server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
		SilenceUsage: true,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables and exit",
		Run: func(cmd *cobra.Command, args []string) {
			initAll()
			log.Println("Migration done")
		},
	})
	root.AddCommand(userCmd())
	return root
}

func userCmd() *cobra.Command {
	var username, email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			initAll()
			user, err := models.UserCreate(username, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s created with ID %d\n", user.Username, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "user name")
	create.Flags().StringVar(&email, "email", "", "email address")
	create.Flags().StringVar(&password, "password", "", "password, at least 6 characters")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	user := &cobra.Command{Use: "user", Short: "Manage users"}
	user.AddCommand(create)
	return user
}

func initAll() {
	db.Init()
	storage.Init()
	models.Init()
	processing.Init()
	metrics.Init()
}

func serve() error {
	initAll()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go processing.StartProcessing(ctx, config.PROCESSING_INTERVAL)

	handlers.Extractor = gemini.NewClient()
	if config.GEMINI_API_KEY == "" {
		log.Println("GEMINI_API_KEY is not set, extraction requests will fail")
	}
	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	sessionStore := gormsessions.NewStore(db.Instance, true, sessionKey())
	router := setupRouter(sessionStore)

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.RunWithContext(ctx, router, strings.Split(config.TLS_DOMAINS, ",")...)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	} else {
		err = listen(ctx, config.BIND_ADDRESS, router)
	}
	log.Printf("Server stopped: %v", err)
	return err
}

// sessionKey returns the configured key, or a random one when SESSION_KEY was left
// at its placeholder
func sessionKey() []byte {
	if config.SESSION_KEY == config.DefaultSessionKey {
		log.Println("SESSION_KEY is not set, using a random key. Sessions will not survive a restart")
		config.SESSION_KEY = utils.RandSalt(32)
	}
	return []byte(config.SESSION_KEY)
}

// listen serves handler on addr until ctx is done, then waits for open requests
func listen(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func setupRouter(sessionStore sessions.Store) *gin.Engine {
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORS_ORIGINS,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	sessionStore.Options(auth.Options())
	router.Use(sessions.Sessions(auth.SessionName, sessionStore))
	if !config.DEBUG_MODE {
		// Images and exports are already compressed
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`^/api/checks/\d+/(image|export-pdf)$`})))
	} else {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(utils.CacheControl(utils.CacheNoCache)) // individual end-points can override that

	router.GET("/api/health", handlers.Health)
	router.GET("/api/test-db", handlers.TestDB)
	router.GET("/metrics", gin.WrapH(metrics.Default.Handler()))
	// User handlers
	router.POST("/api/auth/register", handlers.UserRegister)
	router.POST("/api/auth/login", handlers.UserLogin)
	authRouter := &auth.Router{Base: router}
	authRouter.POST("/api/auth/logout", handlers.UserLogout)
	authRouter.GET("/api/auth/profile", handlers.UserProfile)
	authRouter.PUT("/api/user/profile", handlers.UserUpdateProfile)
	authRouter.PUT("/api/user/password", handlers.UserChangePassword)
	authRouter.GET("/api/user/stats", handlers.UserStats)
	// Check handlers
	authRouter.GET("/api/checks", handlers.CheckList)
	authRouter.POST("/api/checks/extract", handlers.CheckExtract)
	authRouter.POST("/api/checks/insert-sample", handlers.CheckInsertSample)
	authRouter.GET("/api/checks/:id", handlers.CheckGet)
	imageRouter := &auth.Router{Base: router.Group("", utils.CacheControl(86400))}
	imageRouter.GET("/api/checks/:id/image", handlers.CheckImage)
	authRouter.PUT("/api/checks/:id/update-extracted-data", handlers.CheckUpdateExtracted)
	authRouter.POST("/api/checks/:id/insert-extracted-data", handlers.CheckInsertExtracted)
	authRouter.GET("/api/checks/:id/export-csv", handlers.CheckExportCSV)
	authRouter.GET("/api/checks/:id/export-pdf", handlers.CheckExportPDF)
	authRouter.DELETE("/api/checks/:id", handlers.CheckDelete)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.Response{Message: "Route not found"})
	})
	return router
}
