package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/staffbook/internal/middleware"
	"github.com/hitoshi/staffbook/internal/security"
	"github.com/hitoshi/staffbook/internal/view"
)

// ルートパス
const (
	employeesPath = "/employees"
	loginPath     = "/auth/login"
	registerPath  = "/auth/register"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	IdentityResolver middleware.IdentityResolver
	RateLimiter      *middleware.RateLimiter
	CSRFConfig       middleware.CSRFConfig
	Logger           *slog.Logger
	HTTPRecorder     middleware.HTTPRecorder

	// 描画・入力
	Renderer  view.Renderer
	Sanitizer security.InputSanitizerService

	// 認証
	AuthService   AuthServiceInterface
	AuthConfig    AuthHandlerConfig
	LoginRecorder LoginRecorder

	// 従業員
	EmployeeStore    EmployeeStore
	MutationRecorder MutationRecorder

	// 運用
	Pinger         Pinger
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → RealIP → Session → Logging → Metrics → SecurityHeaders
//
// 従業員ルート（/employees/*）はさらに RequireAuth → RateLimit(General) → CSRF を通る。
// 未認証のリクエストはCSRF検証やストアアクセスの前にログイン画面へリダイレクトされる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSessionMiddleware(deps.IdentityResolver))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.CSRFConfig.CookieSecure))

	authHandler := NewAuthHandler(deps.AuthService, deps.Renderer, deps.Sanitizer, deps.LoginRecorder, deps.AuthConfig)
	employeeHandler := NewEmployeeHandler(deps.EmployeeStore, deps.Renderer, deps.Sanitizer, deps.MutationRecorder)
	healthHandler := NewHealthHandler(deps.Pinger)

	csrf := middleware.NewCSRFMiddleware(deps.CSRFConfig)

	// --- 認証不要のルート ---

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, registerPath, http.StatusFound)
	})
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(csrf)

		r.Get("/register", authHandler.ShowRegister)
		r.Post("/register", authHandler.Register)
		r.Get("/login", authHandler.ShowLogin)
		// ログイン試行はIP単位でレート制限する
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: RequireAuth → RateLimit(General) → CSRF
	r.Route(employeesPath, func(r chi.Router) {
		r.Use(middleware.RequireAuth(loginPath))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(csrf)

		r.Get("/", employeeHandler.List)
		r.Post("/", employeeHandler.Create)
		r.Get("/add", employeeHandler.ShowAdd)
		r.Get("/edit/{id}", employeeHandler.ShowEdit)
		r.Post("/edit/{id}", employeeHandler.Update)
		r.Get("/delete/{id}", employeeHandler.Delete)
	})

	return r
}
