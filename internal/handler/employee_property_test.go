package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hitoshi/staffbook/internal/repository"
	"github.com/hitoshi/staffbook/internal/security"
	"github.com/hitoshi/staffbook/internal/view"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// propertyFixture はメモリストアを使用したハンドラーを準備する。
func propertyFixture() (*EmployeeHandler, *repository.MemoryEmployeeRepo, *fakeRenderer) {
	store := repository.NewMemoryEmployeeRepo()
	renderer := &fakeRenderer{}
	return NewEmployeeHandler(store, renderer, security.NewInputSanitizer(), &mockRecorder{}), store, renderer
}

func fieldGen() gopter.Gen {
	return gen.Identifier().Map(func(s string) string {
		if len(s) > 40 {
			return s[:40]
		}
		return s
	})
}

func emailGen() gopter.Gen {
	return gopter.CombineGens(fieldGen(), fieldGen()).Map(func(v []interface{}) string {
		return strings.ToLower(v[0].(string) + "@" + v[1].(string) + ".com")
	})
}

func listEmployees(h *EmployeeHandler, renderer *fakeRenderer) (view.IndexData, int) {
	w := httptest.NewRecorder()
	h.List(w, withIdentity(httptest.NewRequest(http.MethodGet, "/employees", nil)))
	data, _ := renderer.data.(view.IndexData)
	return data, w.Code
}

func TestEmployeeHandler_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(2024)
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("valid create adds exactly one matching record", prop.ForAll(
		func(seed int, name, email, position, department string) bool {
			h, store, renderer := propertyFixture()
			for i := 0; i < seed; i++ {
				h.Create(httptest.NewRecorder(), newFormRequest(http.MethodPost, "/employees",
					employeeForm("seed", "seed@x.io", "p", "d")))
			}
			before := store.Count()

			w := httptest.NewRecorder()
			h.Create(w, newFormRequest(http.MethodPost, "/employees", employeeForm(name, email, position, department)))
			if w.Code != http.StatusFound {
				return false
			}

			data, code := listEmployees(h, renderer)
			if code != http.StatusOK || len(data.Employees) != before+1 {
				return false
			}
			last := data.Employees[len(data.Employees)-1]
			if last.Name != name || last.Email != email || last.Position != position || last.Department != department {
				return false
			}
			ids := make(map[string]bool, len(data.Employees))
			for _, e := range data.Employees {
				if ids[e.ID] {
					return false
				}
				ids[e.ID] = true
			}
			return true
		},
		gen.IntRange(0, 3),
		fieldGen(), emailGen(), fieldGen(), fieldGen(),
	))

	properties.Property("invalid create leaves the store unchanged", prop.ForAll(
		func(badEmail, position, department string) bool {
			h, store, renderer := propertyFixture()

			w := httptest.NewRecorder()
			h.Create(w, newFormRequest(http.MethodPost, "/employees", employeeForm("", badEmail, position, department)))
			if w.Code != http.StatusBadRequest || store.Count() != 0 {
				return false
			}
			data, ok := renderer.data.(view.FormData)
			if !ok || len(data.Errors) == 0 {
				return false
			}
			return data.Employee.Email == badEmail && data.Employee.Position == position
		},
		fieldGen(), fieldGen(), fieldGen(),
	))

	properties.Property("edit then list shows the new department without duplicates", prop.ForAll(
		func(name, department, newDepartment string) bool {
			h, store, renderer := propertyFixture()
			h.Create(httptest.NewRecorder(), newFormRequest(http.MethodPost, "/employees",
				employeeForm(name, "a@b.com", "Dev", department)))
			data, _ := listEmployees(h, renderer)
			if len(data.Employees) != 1 {
				return false
			}
			id := data.Employees[0].ID

			w := httptest.NewRecorder()
			req := withChiURLParam(newFormRequest(http.MethodPost, "/employees/edit/"+id,
				employeeForm(name, "a@b.com", "Dev", newDepartment)), "id", id)
			h.Update(w, req)
			if w.Code != http.StatusFound {
				return false
			}

			data, _ = listEmployees(h, renderer)
			return store.Count() == 1 &&
				len(data.Employees) == 1 &&
				data.Employees[0].ID == id &&
				data.Employees[0].Department == newDepartment
		},
		fieldGen(), fieldGen(), fieldGen(),
	))

	properties.Property("deleting an unknown id returns 404 and keeps the count", prop.ForAll(
		func(seed int) bool {
			h, store, _ := propertyFixture()
			for i := 0; i < seed; i++ {
				h.Create(httptest.NewRecorder(), newFormRequest(http.MethodPost, "/employees",
					employeeForm("seed", "seed@x.io", "p", "d")))
			}
			before := store.Count()

			id := uuid.NewString()
			w := httptest.NewRecorder()
			h.Delete(w, withChiURLParam(withIdentity(httptest.NewRequest(http.MethodGet, "/employees/delete/"+id, nil)), "id", id))
			return w.Code == http.StatusNotFound && store.Count() == before
		},
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

// 具体例: Annを作成し「Ann B」に編集した後の一覧
func TestEmployeeHandler_EditScenario(t *testing.T) {
	h, _, renderer := propertyFixture()

	h.Create(httptest.NewRecorder(), newFormRequest(http.MethodPost, "/employees",
		employeeForm("Ann", "ann@x.io", "Dev", "Eng")))
	data, _ := listEmployees(h, renderer)
	if len(data.Employees) != 1 {
		t.Fatalf("employees = %d, want 1", len(data.Employees))
	}
	id := data.Employees[0].ID

	w := httptest.NewRecorder()
	h.Update(w, withChiURLParam(newFormRequest(http.MethodPost, "/employees/edit/"+id,
		employeeForm("Ann B", "ann@x.io", "Dev", "Eng")), "id", id))
	if w.Code != http.StatusFound {
		t.Fatalf("update status = %d, want 302", w.Code)
	}

	data, _ = listEmployees(h, renderer)
	if len(data.Employees) != 1 {
		t.Fatalf("employees = %d, want 1", len(data.Employees))
	}
	got := data.Employees[0]
	if got.ID != id || got.Name != "Ann B" || got.Email != "ann@x.io" || got.Position != "Dev" || got.Department != "Eng" {
		t.Errorf("employee = %+v", got)
	}
}
