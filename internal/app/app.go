// Package app はコマンドラインからの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/hitoshi/staffbook/internal/auth"
	"github.com/hitoshi/staffbook/internal/config"
	"github.com/hitoshi/staffbook/internal/database"
	"github.com/hitoshi/staffbook/internal/handler"
	"github.com/hitoshi/staffbook/internal/logger"
	"github.com/hitoshi/staffbook/internal/metrics"
	"github.com/hitoshi/staffbook/internal/middleware"
	"github.com/hitoshi/staffbook/internal/model"
	"github.com/hitoshi/staffbook/internal/repository"
	"github.com/hitoshi/staffbook/internal/security"
	"github.com/hitoshi/staffbook/internal/view"
	"github.com/hitoshi/staffbook/internal/worker/cleanup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tamathecxder/randomail"
)

const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 設定を読み込み、設定されたレベルでJSON構造化ログをセットアップする。
// wはログ出力先として使用する。
func Init(w io.Writer, configFile string) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 設定を読み込む
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたレベルでログを再構成する
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetupDefault(w, level)

	return cfg, nil
}

// stores はストアドライバーに応じて構築したリポジトリ群。
type stores struct {
	employees repository.EmployeeRepository
	users     repository.UserRepository
	sessions  repository.SessionRepository
	pinger    handler.Pinger
	close     func()
}

// openStores は設定に応じてPostgreSQLまたはメモリのリポジトリを構築する。
func openStores(ctx context.Context, cfg *config.Config, observer repository.QueryObserver) (*stores, error) {
	if cfg.UsesMemoryStore() {
		slog.Warn("using in-memory store; data is lost on restart")
		return &stores{
			employees: repository.NewMemoryEmployeeRepo(),
			users:     repository.NewMemoryUserRepo(),
			sessions:  repository.NewMemorySessionRepo(),
			close:     func() {},
		}, nil
	}

	pool, err := database.Open(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		return nil, err
	}
	slog.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	return &stores{
		employees: repository.NewPostgresEmployeeRepo(pool, observer),
		users:     repository.NewPostgresUserRepo(pool, observer),
		sessions:  repository.NewPostgresSessionRepo(pool, observer),
		pinger:    pool,
		close:     pool.Close,
	}, nil
}

// runServe はWebサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーとセッションクリーンアップを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 2. ストア
	st, err := openStores(ctx, cfg, collector)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.close()

	// 3. ドメインサービス
	authService := auth.NewService(st.users, st.sessions, auth.ServiceConfig{
		SessionMaxAge: cfg.SessionMaxAge,
	})

	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// configはreq/min単位なのでreq/secに変換する
	rateLimiterCfg.GeneralRate = middleware.PerMinute(cfg.RateLimitGeneral)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.LoginRate = middleware.PerMinute(cfg.RateLimitLogin)
	rateLimiterCfg.LoginBurst = cfg.RateLimitLogin
	rateLimiterCfg.OnLoginLimited = func() { collector.RecordLoginAttempt(metrics.LoginRateLimited) }
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 4. ルーター
	router := handler.NewRouter(&handler.RouterDeps{
		IdentityResolver: authService,
		RateLimiter:      rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		Logger:       slog.Default(),
		HTTPRecorder: collector,

		Renderer:  view.NewHTMLRenderer(),
		Sanitizer: security.NewInputSanitizer(),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
		LoginRecorder: collector,

		EmployeeStore:    st.employees,
		MutationRecorder: collector,

		Pinger:         st.pinger,
		MetricsHandler: metrics.Handler(registry),
	})

	// 5. 期限切れセッションのクリーンアップ
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	cleanupJob := cleanup.NewCleanupJob(st.sessions, collector, slog.Default())
	go cleanupJob.Start(jobCtx, cfg.SessionCleanupInterval)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
			slog.String("base_url", cfg.BaseURL),
			slog.String("store_driver", cfg.StoreDriver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down web server...")
	cancelJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.UsesMemoryStore() {
		return fmt.Errorf("migrate requires STORE_DRIVER=%s", config.StoreDriverPostgres)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

var (
	seedFirstNames  = []string{"Ann", "Bob", "Chika", "Daisuke", "Emma", "Farid", "Grace", "Hiro", "Ines", "Jun"}
	seedLastNames   = []string{"Sato", "Smith", "Tanaka", "Garcia", "Suzuki", "Müller", "Kim", "Ito", "Rossi", "Chen"}
	seedPositions   = []string{"Engineer", "Designer", "Product Manager", "Analyst", "Support Specialist"}
	seedDepartments = []string{"Engineering", "Design", "Product", "Finance", "Customer Success"}
)

// seedEmployees はcount件のデモ用従業員を生成する。メールアドレスはランダムに生成する。
func seedEmployees(count int) []*model.Employee {
	employees := make([]*model.Employee, 0, count)
	for range count {
		employees = append(employees, model.NewEmployee(model.EmployeeInput{
			Name:       seedFirstNames[rand.IntN(len(seedFirstNames))] + " " + seedLastNames[rand.IntN(len(seedLastNames))],
			Email:      randomail.GenerateRandomEmail(),
			Position:   seedPositions[rand.IntN(len(seedPositions))],
			Department: seedDepartments[rand.IntN(len(seedDepartments))],
		}))
	}
	return employees
}

// runSeed はデモ用の従業員を投入し、投入件数を返す。
func runSeed(ctx context.Context, cfg *config.Config, count int) (int, error) {
	st, err := openStores(ctx, cfg, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.close()

	inserted := 0
	for _, e := range seedEmployees(count) {
		if err := st.employees.Create(ctx, e); err != nil {
			return inserted, fmt.Errorf("failed to seed employee: %w", err)
		}
		inserted++
	}

	slog.Info("seed completed", slog.Int("inserted", inserted))
	return inserted, nil
}

// healthcheckPort はヘルスチェック対象のポートを環境変数から決定する。
func healthcheckPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return "8080"
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(ctx context.Context, port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
