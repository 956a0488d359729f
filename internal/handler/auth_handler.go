package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/staffbook/internal/auth"
	"github.com/hitoshi/staffbook/internal/metrics"
	"github.com/hitoshi/staffbook/internal/middleware"
	"github.com/hitoshi/staffbook/internal/model"
	"github.com/hitoshi/staffbook/internal/repository"
	"github.com/hitoshi/staffbook/internal/security"
	"github.com/hitoshi/staffbook/internal/validation"
	"github.com/hitoshi/staffbook/internal/view"
)

const (
	invalidCredentialsMessage = "Invalid email or password"
	duplicateEmailMessage     = "Email is already registered"
	registeredNotice          = "Registration complete. Please log in."
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// LoginRecorder はログイン試行の結果を記録する。metrics.Collectorが実装する。
type LoginRecorder interface {
	RecordLoginAttempt(result string)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はユーザー登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	renderer  view.Renderer
	sanitizer security.InputSanitizerService
	recorder  LoginRecorder
	config    AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(
	service AuthServiceInterface,
	renderer view.Renderer,
	sanitizer security.InputSanitizerService,
	recorder LoginRecorder,
	config AuthHandlerConfig,
) *AuthHandler {
	return &AuthHandler{
		service:   service,
		renderer:  renderer,
		sanitizer: sanitizer,
		recorder:  recorder,
		config:    config,
	}
}

// ShowRegister は登録フォームを表示する。
// GET /auth/register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	render(w, h.renderer, http.StatusOK, view.AuthRegister, view.AuthFormData{
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	})
}

// Register はユーザーを登録し、ログイン画面へリダイレクトする。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	// パスワードは加工せずにそのまま扱う
	values := h.sanitizer.SanitizeFields(r.PostForm.Get, "name", "email")
	values["password"] = r.PostForm.Get("password")
	values["password2"] = r.PostForm.Get("password2")

	data := view.AuthFormData{
		Name:      values["name"],
		Email:     values["email"],
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	}

	if errs := validation.RegisterSchema.Validate(values); len(errs) > 0 {
		data.Errors = errs
		render(w, h.renderer, http.StatusBadRequest, view.AuthRegister, data)
		return
	}

	_, err := h.service.Register(r.Context(), auth.RegisterInput{
		Name:     values["name"],
		Email:    values["email"],
		Password: values["password"],
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			data.Message = duplicateEmailMessage
			render(w, h.renderer, http.StatusConflict, view.AuthRegister, data)
			return
		}
		slog.Error("failed to register user", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	http.Redirect(w, r, loginPath+"?registered=1", http.StatusFound)
}

// ShowLogin はログインフォームを表示する。
// GET /auth/login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	data := view.AuthFormData{
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	}
	if r.URL.Query().Get("registered") != "" {
		data.Notice = registeredNotice
	}
	render(w, h.renderer, http.StatusOK, view.AuthLogin, data)
}

// Login は認証に成功した場合にセッションCookieを設定し、従業員一覧へリダイレクトする。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	email := h.sanitizer.Sanitize(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	data := view.AuthFormData{
		Email:     email,
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	}

	if errs := validation.LoginSchema.Validate(map[string]string{"email": email, "password": password}); len(errs) > 0 {
		h.recorder.RecordLoginAttempt(metrics.LoginFailure)
		data.Errors = errs
		render(w, h.renderer, http.StatusBadRequest, view.AuthLogin, data)
		return
	}

	session, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.recorder.RecordLoginAttempt(metrics.LoginFailure)
			data.Message = invalidCredentialsMessage
			render(w, h.renderer, http.StatusUnauthorized, view.AuthLogin, data)
			return
		}
		slog.Error("failed to login", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	h.recorder.RecordLoginAttempt(metrics.LoginSuccess)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, employeesPath, http.StatusFound)
}

// Logout はセッションを破棄してログイン画面へリダイレクトする。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, loginPath, http.StatusFound)
}
