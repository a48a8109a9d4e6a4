package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lifegate/church-mgmt/internal"
	"github.com/lifegate/church-mgmt/internal/auth"
	authpg "github.com/lifegate/church-mgmt/internal/auth/postgres"
	"github.com/lifegate/church-mgmt/internal/church"
	churchpg "github.com/lifegate/church-mgmt/internal/church/postgres"
	"github.com/lifegate/church-mgmt/internal/churchlead"
	leadpg "github.com/lifegate/church-mgmt/internal/churchlead/postgres"
	"github.com/lifegate/church-mgmt/internal/hierarchy"
	hierarchypg "github.com/lifegate/church-mgmt/internal/hierarchy/postgres"
	"github.com/lifegate/church-mgmt/internal/member"
	memberpg "github.com/lifegate/church-mgmt/internal/member/postgres"
	"github.com/lifegate/church-mgmt/internal/transport/rest"
	"github.com/lifegate/church-mgmt/internal/user"
	userpg "github.com/lifegate/church-mgmt/internal/user/postgres"
	"github.com/lifegate/church-mgmt/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger

	hierarchyService := hierarchy.NewService(hierarchypg.NewLevelRepository(deps.Gorm), lg)
	churchService := church.NewService(churchpg.NewChurchRepository(deps.Gorm), hierarchyService, lg)
	leadService := churchlead.NewService(leadpg.NewChurchLeadRepository(deps.Gorm), churchService, hierarchyService, lg)
	memberService := member.NewService(memberpg.NewMemberRepository(deps.Gorm), churchService, hierarchyService, lg)
	userService := user.NewService(userpg.NewUserRepository(deps.Gorm))

	tokenGen := auth.NewJWTTokenGenerator(
		deps.Config.Security.AccessTokenSecret,
		deps.Config.Security.RefreshTokenSecret,
		deps.Config.Security.AccessTokenDuration,
		deps.Config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authpg.NewRepository(deps.Gorm), tokenGen, deps.Config.Security.BCryptCost)

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		auth.NewHandler(authService),
		user.NewHandler(userService),
		hierarchy.NewHandler(hierarchyService),
		church.NewHandler(churchService),
		churchlead.NewHandler(leadService),
		member.NewHandler(memberService),
		lg,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Env, config.Logging.Level)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
