package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfHandler(t *testing.T, captured *string) http.Handler {
	t.Helper()
	return NewCSRFMiddleware(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = CSRFTokenFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/employees", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCSRFMiddleware_GET_IssuesCookieAndContextToken(t *testing.T) {
	var token string
	handler := csrfHandler(t, &token)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/add", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected csrf_token cookie")
	}
	if len(cookie.Value) != 64 {
		t.Errorf("token length = %d, want 64", len(cookie.Value))
	}
	if token != cookie.Value {
		t.Errorf("context token = %q, want cookie value %q", token, cookie.Value)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
}

func TestCSRFMiddleware_GET_ReusesExistingCookie(t *testing.T) {
	var token string
	handler := csrfHandler(t, &token)

	req := httptest.NewRequest(http.MethodGet, "/employees/add", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "existing"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if len(w.Result().Cookies()) != 0 {
		t.Error("should not issue a new cookie when one exists")
	}
	if token != "existing" {
		t.Errorf("context token = %q, want %q", token, "existing")
	}
}

func TestCSRFMiddleware_POST_FormFieldMatches(t *testing.T) {
	var token string
	handler := csrfHandler(t, &token)

	req := postForm(url.Values{CSRFFieldName: {"tok"}, "name": {"Ann"}})
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "tok"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if token != "tok" {
		t.Errorf("context token = %q, want %q", token, "tok")
	}
}

func TestCSRFMiddleware_POST_HeaderMatches(t *testing.T) {
	handler := csrfHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "tok"})
	req.Header.Set(csrfHeaderName, "tok")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCSRFMiddleware_POST_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		field  string
	}{
		{"Cookieなし", "", "tok"},
		{"送信トークンなし", "tok", ""},
		{"トークン不一致", "tok", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCSRFMiddleware(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called")
			}))

			values := url.Values{}
			if tt.field != "" {
				values.Set(CSRFFieldName, tt.field)
			}
			req := postForm(values)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestCSRFTokenFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := CSRFTokenFromContext(req.Context()); got != "" {
		t.Errorf("token = %q, want empty", got)
	}
}
