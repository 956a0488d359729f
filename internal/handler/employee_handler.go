// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/staffbook/internal/middleware"
	"github.com/hitoshi/staffbook/internal/model"
	"github.com/hitoshi/staffbook/internal/repository"
	"github.com/hitoshi/staffbook/internal/security"
	"github.com/hitoshi/staffbook/internal/validation"
	"github.com/hitoshi/staffbook/internal/view"
)

// employeeNotFoundMessage は対象の従業員が存在しない場合のエラーメッセージ。
const employeeNotFoundMessage = "Employee not found"

// 従業員変更操作のメトリクスラベル
const (
	mutationCreate = "create"
	mutationUpdate = "update"
	mutationDelete = "delete"
)

// EmployeeStore は従業員ハンドラーが必要とするストアインターフェース。
// repository.EmployeeRepositoryの実装がそのまま満たす。
type EmployeeStore interface {
	Create(ctx context.Context, e *model.Employee) error
	FindAll(ctx context.Context) ([]*model.Employee, error)
	FindByID(ctx context.Context, id string) (*model.Employee, error)
	Update(ctx context.Context, e *model.Employee) error
	DeleteByID(ctx context.Context, id string) error
}

// MutationRecorder は従業員の変更操作を記録する。metrics.Collectorが実装する。
type MutationRecorder interface {
	RecordEmployeeMutation(action string)
}

// EmployeeHandler は従業員リソースのHTTPハンドラー。
// 全ルートは認証ゲートの内側に配置される前提で、Identityの有無は検査しない。
type EmployeeHandler struct {
	store     EmployeeStore
	renderer  view.Renderer
	sanitizer security.InputSanitizerService
	recorder  MutationRecorder
}

// NewEmployeeHandler はEmployeeHandlerを生成する。
func NewEmployeeHandler(
	store EmployeeStore,
	renderer view.Renderer,
	sanitizer security.InputSanitizerService,
	recorder MutationRecorder,
) *EmployeeHandler {
	return &EmployeeHandler{
		store:     store,
		renderer:  renderer,
		sanitizer: sanitizer,
		recorder:  recorder,
	}
}

// List は従業員一覧を表示する。
// GET /employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.FindAll(r.Context())
	if err != nil {
		slog.Error("failed to list employees", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	identity, _ := middleware.IdentityFromContext(r.Context())
	render(w, h.renderer, http.StatusOK, view.EmployeesIndex, view.IndexData{
		Employees: employees,
		Identity:  identity,
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	})
}

// ShowAdd は空の追加フォームを表示する。
// GET /employees/add
func (h *EmployeeHandler) ShowAdd(w http.ResponseWriter, r *http.Request) {
	render(w, h.renderer, http.StatusOK, view.EmployeesAdd, h.formData(r, model.Employee{}, nil))
}

// Create は入力値を検証して従業員を登録する。
// POST /employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, errs, ok := h.readEmployeeForm(w, r)
	if !ok {
		return
	}
	if len(errs) > 0 {
		render(w, h.renderer, http.StatusBadRequest, view.EmployeesAdd,
			h.formData(r, *model.NewEmployee(in), errs))
		return
	}

	employee := model.NewEmployee(in)
	if err := h.store.Create(r.Context(), employee); err != nil {
		slog.Error("failed to create employee", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.recorder.RecordEmployeeMutation(mutationCreate)
	slog.Info("employee created", slog.String("employee_id", employee.ID))
	http.Redirect(w, r, employeesPath, http.StatusFound)
}

// ShowEdit は既存の値を埋めた編集フォームを表示する。
// GET /employees/edit/{id}
func (h *EmployeeHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	employee, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("failed to find employee",
			slog.String("employee_id", id),
			slog.String("error", err.Error()),
		)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if employee == nil {
		writeJSONError(w, http.StatusNotFound, employeeNotFoundMessage)
		return
	}

	render(w, h.renderer, http.StatusOK, view.EmployeesEdit, h.formData(r, *employee, nil))
}

// Update は入力値を検証して従業員を更新する。
// POST /employees/edit/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	in, errs, ok := h.readEmployeeForm(w, r)
	if !ok {
		return
	}

	employee := model.NewEmployee(in)
	employee.ID = id
	if len(errs) > 0 {
		render(w, h.renderer, http.StatusBadRequest, view.EmployeesEdit, h.formData(r, *employee, errs))
		return
	}

	if err := h.store.Update(r.Context(), employee); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, employeeNotFoundMessage)
			return
		}
		slog.Error("failed to update employee",
			slog.String("employee_id", id),
			slog.String("error", err.Error()),
		)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.recorder.RecordEmployeeMutation(mutationUpdate)
	slog.Info("employee updated", slog.String("employee_id", id))
	http.Redirect(w, r, employeesPath, http.StatusFound)
}

// Delete は従業員を削除する。
// GET /employees/delete/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, employeeNotFoundMessage)
			return
		}
		slog.Error("failed to delete employee",
			slog.String("employee_id", id),
			slog.String("error", err.Error()),
		)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.recorder.RecordEmployeeMutation(mutationDelete)
	slog.Info("employee deleted", slog.String("employee_id", id))
	http.Redirect(w, r, employeesPath, http.StatusFound)
}

// readEmployeeForm はフォームを解析し、サニタイズ済みの入力値と検証エラーを返す。
// フォームを解析できなかった場合はレスポンスを書き込みokにfalseを返す。
func (h *EmployeeHandler) readEmployeeForm(w http.ResponseWriter, r *http.Request) (model.EmployeeInput, []validation.FieldError, bool) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form body")
		return model.EmployeeInput{}, nil, false
	}

	values := h.sanitizer.SanitizeFields(r.PostForm.Get, validation.EmployeeSchema.Fields()...)
	in := model.EmployeeInput{
		Name:       values["name"],
		Email:      values["email"],
		Position:   values["position"],
		Department: values["department"],
	}
	return in, validation.EmployeeSchema.Validate(values), true
}

func (h *EmployeeHandler) formData(r *http.Request, e model.Employee, errs []validation.FieldError) view.FormData {
	identity, _ := middleware.IdentityFromContext(r.Context())
	return view.FormData{
		Employee:  e,
		Errors:    errs,
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
		Identity:  identity,
	}
}

// render はビューをバッファに描画してからステータスと本文を書き込む。
// 描画に失敗した場合は途中までのHTMLを返さず500とする。
func render(w http.ResponseWriter, renderer view.Renderer, status int, name string, data any) {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, name, data); err != nil {
		slog.Error("failed to render view",
			slog.String("view", name),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// writeJSONError は {"message": "..."} 形式のエラーレスポンスを書き込む。
func writeJSONError(w http.ResponseWriter, status int, message string) {
	middleware.WriteErrorResponse(w, status, message)
}
