package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponseBody はJSONエラーレスポンスの形式。
type ErrorResponseBody struct {
	Message string `json:"message"`
}

// WriteJSON はvをJSONとしてstatusCodeで書き込む。
// ヘッダー送信後のエンコード失敗はログのみに記録する。
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response",
			slog.Int("status", statusCode),
			slog.String("error", err.Error()),
		)
	}
}

// WriteErrorResponse はJSONエラーレスポンス {"message": "..."} を書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponseBody{Message: message})
}

// WriteInternalServerError は詳細を隠した500レスポンスを書き込む。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, "internal server error")
}
