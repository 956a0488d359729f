// Package security はアプリケーションのセキュリティ機能を提供する。
//
// InputSanitizer はフォームから送信されたテキストからHTMLマークアップを除去する。
// bluemondayのStrictPolicyで全タグを取り除き、scriptやstyleの中身も破棄する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InputSanitizerService はフォーム入力のサニタイズ機能のインターフェースを定義する。
type InputSanitizerService interface {
	// Sanitize は入力からHTMLタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
	// SanitizeFields はgetで取得した指定フィールドの値をそれぞれSanitizeしたマップを返す。
	SanitizeFields(get func(string) string, fields ...string) map[string]string
}

// InputSanitizer はInputSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type InputSanitizer struct {
	policy *bluemonday.Policy
}

// NewInputSanitizer はInputSanitizerを生成する。
func NewInputSanitizer() *InputSanitizer {
	return &InputSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力からHTMLタグを除去したプレーンテキストを返す。
// bluemondayはテキストをHTMLエスケープして返すため、保存用にエスケープを戻す。
// 表示時のエスケープはビュー側で行う。
func (s *InputSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// SanitizeFields は指定したフィールドのみを取り出してサニタイズした値のマップを返す。
// 送信されなかったフィールドは空文字として扱う。
func (s *InputSanitizer) SanitizeFields(get func(string) string, fields ...string) map[string]string {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f] = s.Sanitize(get(f))
	}
	return values
}

var _ InputSanitizerService = (*InputSanitizer)(nil)
