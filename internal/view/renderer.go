// Package view はgomponentsによるHTMLビューの描画を提供する。
package view

import (
	"errors"
	"fmt"
	"io"

	"github.com/hitoshi/staffbook/internal/model"
	"github.com/hitoshi/staffbook/internal/validation"
	g "maragu.dev/gomponents"
)

// ビュー名
const (
	EmployeesIndex = "employees/index"
	EmployeesAdd   = "employees/add"
	EmployeesEdit  = "employees/edit"
	AuthLogin      = "auth/login"
	AuthRegister   = "auth/register"
)

var (
	// ErrUnknownView は未登録のビュー名が指定されたことを示す。
	ErrUnknownView = errors.New("unknown view")
	// ErrInvalidData はビューに渡されたデータの型が期待と異なることを示す。
	ErrInvalidData = errors.New("invalid view data")
)

// Renderer はビュー名とデータからHTMLドキュメントを描画するインターフェース。
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// IndexData は従業員一覧ビューのデータ。
type IndexData struct {
	Employees []*model.Employee
	Identity  *model.Identity
	CSRFToken string
}

// FormData は従業員の追加・編集フォームビューのデータ。
// 編集時はEmployee.IDに対象IDを設定する。
type FormData struct {
	Employee  model.Employee
	Errors    []validation.FieldError
	CSRFToken string
	Identity  *model.Identity
}

// AuthFormData はログイン・登録フォームビューのデータ。
// パスワードは再描画時にも埋め戻さない。
type AuthFormData struct {
	Name      string
	Email     string
	Errors    []validation.FieldError
	Message   string
	Notice    string
	CSRFToken string
}

// HTMLRenderer はgomponentsでHTMLを描画するRenderer実装。
type HTMLRenderer struct {
	views map[string]func(data any) (g.Node, error)
}

// NewHTMLRenderer は全ビューを登録したHTMLRendererを生成する。
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		views: map[string]func(data any) (g.Node, error){
			EmployeesIndex: typed(indexPage),
			EmployeesAdd:   typed(addPage),
			EmployeesEdit:  typed(editPage),
			AuthLogin:      typed(loginPage),
			AuthRegister:   typed(registerPage),
		},
	}
}

// Render は指定ビューをwに描画する。
func (r *HTMLRenderer) Render(w io.Writer, name string, data any) error {
	build, ok := r.views[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
	node, err := build(data)
	if err != nil {
		return fmt.Errorf("view %s: %w", name, err)
	}
	return node.Render(w)
}

// typed はデータ型を検査してからページ関数を呼び出すビルダーを返す。
func typed[T any](page func(T) g.Node) func(data any) (g.Node, error) {
	return func(data any) (g.Node, error) {
		switch d := data.(type) {
		case T:
			return page(d), nil
		case *T:
			if d != nil {
				return page(*d), nil
			}
		}
		var zero T
		return nil, fmt.Errorf("%w: got %T, want %T", ErrInvalidData, data, zero)
	}
}

var _ Renderer = (*HTMLRenderer)(nil)
