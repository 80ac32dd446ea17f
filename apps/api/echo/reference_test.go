package echoapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/internhub/core/reference"
	"github.com/trezcool/internhub/tests"
)

func Test_referenceApi_categories(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	std := testutil.CreateStudent(t, usrRepo, "Student", "std@test.cd", "")
	adminToken := getToken(t, admin)

	runHttpTests(t, []httpTest{
		{
			name: "public list, seed order", path: "/api/categories",
			wantData: marchallObj(t, map[string]interface{}{"categories": reference.DefaultCategories, "success": true}),
		},
		{name: "create: auth required", method: http.MethodPost, path: "/api/categories", wantCode: http.StatusUnauthorized},
		{
			name: "create: admin required", method: http.MethodPost, path: "/api/categories", token: getToken(t, std),
			body: []byte(`{"name":"Go","value":"go"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "create: missing value", method: http.MethodPost, path: "/api/categories", token: adminToken,
			body: []byte(`{"name":"Go","value":"  "}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Name and value are required"}),
		},
		{
			name: "create: value too long", method: http.MethodPost, path: "/api/categories", token: adminToken,
			body:     marchallObj(t, reference.NewCategory{Name: "Go", Value: strings.Repeat("g", 51)}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"value": "value must be a maximum of 50 characters in length"}),
		},
		{
			name: "create: duplicate", method: http.MethodPost, path: "/api/categories", token: adminToken,
			body:     marchallObj(t, reference.NewCategory{Name: "Other", Value: reference.DefaultCategories[0].Value}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Category with this name or value already exists"}),
		},
	})

	t.Run("create: success", func(t *testing.T) {
		rec := serve(httpTest{
			method: http.MethodPost, path: "/api/categories", token: adminToken,
			body: []byte(`{"name":" Golang ","value":" GO "}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var cat reference.Category
		unmarshal(t, rec, &cat)
		assert.NotZero(t, cat.ID)
		assert.Equal(t, "Golang", cat.Name)
		assert.Equal(t, "go", cat.Value)

		var resp struct {
			Categories []reference.Category `json:"categories"`
		}
		unmarshal(t, serve(httpTest{path: "/api/categories"}), &resp)
		require.Len(t, resp.Categories, len(reference.DefaultCategories)+1)
		assert.Equal(t, cat, resp.Categories[len(resp.Categories)-1])
	})
}

func Test_referenceApi_names(t *testing.T) {
	resetDB()

	admin := testutil.CreateAdmin(t, usrRepo, "Admin", "admin@test.cd", "")
	adminToken := getToken(t, admin)

	runHttpTests(t, []httpTest{
		{
			name: "departments", path: "/api/departments",
			wantData: marchallObj(t, map[string]interface{}{"departments": reference.DefaultDepartments, "success": true}),
		},
		{
			name: "supervisors", path: "/api/supervisors",
			wantData: marchallObj(t, map[string]interface{}{"supervisors": reference.DefaultSupervisors, "success": true}),
		},
		{name: "add: auth required", method: http.MethodPost, path: "/api/departments", body: []byte(`{"name":"Legal"}`), wantCode: http.StatusUnauthorized},
		{
			name: "add: name required", method: http.MethodPost, path: "/api/supervisors", token: adminToken, body: []byte(`{"name":""}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Name is required"}),
		},
		{
			name: "add: duplicate department", method: http.MethodPost, path: "/api/departments", token: adminToken,
			body:     marchallObj(t, reference.NewName{Name: reference.DefaultDepartments[0]}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Department already exists"}),
		},
		{
			name: "add: duplicate supervisor", method: http.MethodPost, path: "/api/supervisors", token: adminToken,
			body:     marchallObj(t, reference.NewName{Name: reference.DefaultSupervisors[0]}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Supervisor already exists"}),
		},
		{
			name: "add: success", method: http.MethodPost, path: "/api/departments", token: adminToken, body: []byte(`{"name":"  Legal "}`),
			wantCode: http.StatusCreated, wantData: marchallObj(t, reference.NewName{Name: "Legal"}),
		},
	})

	t.Run("added names are listed last", func(t *testing.T) {
		var resp struct {
			Departments []string `json:"departments"`
		}
		unmarshal(t, serve(httpTest{path: "/api/departments"}), &resp)
		require.Len(t, resp.Departments, len(reference.DefaultDepartments)+1)
		assert.Equal(t, "Legal", resp.Departments[len(resp.Departments)-1])
	})
}
