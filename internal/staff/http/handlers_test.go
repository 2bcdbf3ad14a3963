package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew-app/sitecrew-backend/internal/identity"
	"github.com/sitecrew-app/sitecrew-backend/internal/session"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/domain"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/service"
)

type fakeIdentity struct {
	nextUID   int
	createErr error
	revoked   []string
	deleted   []string
}

func (f *fakeIdentity) CreateUser(_ context.Context, _, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextUID++
	return fmt.Sprintf("uid-%d", f.nextUID), nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeIdentity) RevokeSessions(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

type fakeStore struct {
	nextDoc  int
	profiles map[string]*domain.StaffProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]*domain.StaffProfile)}
}

func (f *fakeStore) Create(_ context.Context, p *domain.StaffProfile) (string, error) {
	f.nextDoc++
	docID := fmt.Sprintf("doc-%d", f.nextDoc)
	stored := *p
	stored.DocID = docID
	f.profiles[docID] = &stored
	p.DocID = docID
	return docID, nil
}

func (f *fakeStore) GetByUID(_ context.Context, uid string) (*domain.StaffProfile, error) {
	for _, p := range f.profiles {
		if p.UID == uid {
			out := *p
			return &out, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (f *fakeStore) Update(_ context.Context, docID string, patch domain.ProfilePatch, updatedAt time.Time) (*domain.StaffProfile, error) {
	p, ok := f.profiles[docID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p.Name = patch.Name
	p.PhoneNumber = patch.PhoneNumber
	p.JobRole = patch.JobRole
	p.AssignedSiteLocation = patch.AssignedSiteLocation
	p.WorkingSchedule = patch.WorkingSchedule
	p.UpdatedAt = updatedAt
	out := *p
	return &out, nil
}

func (f *fakeStore) QueryRoster(_ context.Context, siteLocation string) ([]domain.StaffProfile, error) {
	var out []domain.StaffProfile
	for _, p := range f.profiles {
		if p.RoleType == domain.RoleEmployee && p.Approved && p.AssignedSiteLocation == siteLocation {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) QueryApprovedEmployees(_ context.Context) ([]domain.StaffProfile, error) {
	var out []domain.StaffProfile
	for _, p := range f.profiles {
		if p.RoleType == domain.RoleEmployee && p.Approved {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeSessions struct {
	signedOut []string
	err       error
}

func (f *fakeSessions) SignOut(_ context.Context, uid string) error {
	if f.err != nil {
		return f.err
	}
	f.signedOut = append(f.signedOut, uid)
	return nil
}

type testEnv struct {
	router   *gin.Engine
	ids      *fakeIdentity
	store    *fakeStore
	sessions *fakeSessions
}

// setupEnv wires real services over in-memory fakes behind a stub auth
// middleware that trusts the X-Test-UID header.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ids := &fakeIdentity{}
	store := newFakeStore()
	sessions := &fakeSessions{}

	h := New(
		service.NewProvisionService(ids, store, nil),
		service.NewProfileService(store),
		service.NewRosterService(store, store),
		sessions,
	)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-UID"); uid != "" {
			c.Set(session.CtxUID, uid)
		}
		c.Next()
	})
	h.Register(api)

	return &testEnv{router: r, ids: ids, store: store, sessions: sessions}
}

func (e *testEnv) seed(t *testing.T, uid, role, site string) *domain.StaffProfile {
	t.Helper()
	p := &domain.StaffProfile{
		UID:                  uid,
		Name:                 "Jane",
		Email:                uid + "@example.com",
		PhoneNumber:          "0711111111",
		JobRole:              "Mason",
		AssignedSiteLocation: site,
		WorkingSchedule:      "Mon-Fri",
		RoleType:             role,
		Approved:             true,
		CreatedAt:            time.Now(),
	}
	_, err := e.store.Create(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (e *testEnv) do(method, path, uid string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("X-Test-UID", uid)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func validAddStaffBody() addStaffRequest {
	return addStaffRequest{
		Name:                 "Bob Builder",
		PhoneNumber:          "0722222222",
		Email:                "bob@example.com",
		Password:             "secret1",
		JobRole:              "Carpenter",
		AssignedSiteLocation: "Branch A",
		WorkingSchedule:      "Mon-Fri",
		RoleType:             domain.RoleEmployee,
	}
}

func TestAddStaff(t *testing.T) {
	t.Run("super admin provisions an employee", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "super-1", domain.RoleSuperAdmin, "")

		w := env.do(http.MethodPost, "/api/v1/staff", "super-1", validAddStaffBody())
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "bob@example.com")
		assert.Equal(t, []string{"uid-1"}, env.ids.revoked)
	})

	t.Run("admins and employees are refused", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "admin-1", domain.RoleAdmin, "Branch A")
		env.seed(t, "emp-1", domain.RoleEmployee, "Branch A")

		assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/v1/staff", "admin-1", validAddStaffBody()).Code)
		assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/v1/staff", "emp-1", validAddStaffBody()).Code)
	})

	t.Run("validation failure names the field", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "super-1", domain.RoleSuperAdmin, "")

		body := validAddStaffBody()
		body.Password = "12345"

		w := env.do(http.MethodPost, "/api/v1/staff", "super-1", body)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "password", resp["field"])
		assert.Equal(t, "password must be at least 6 characters long", resp["error"])
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "super-1", domain.RoleSuperAdmin, "")
		env.ids.createErr = identity.ErrEmailAlreadyInUse

		w := env.do(http.MethodPost, "/api/v1/staff", "super-1", validAddStaffBody())
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unauthenticated request", func(t *testing.T) {
		env := setupEnv(t)
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/v1/staff", "", validAddStaffBody()).Code)
	})
}

func TestGetProfile(t *testing.T) {
	env := setupEnv(t)
	env.seed(t, "emp-1", domain.RoleEmployee, "Branch A")

	t.Run("returns the caller's own record", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/profile", "emp-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"uid":"emp-1"`)
	})

	t.Run("identity without a profile", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/profile", "ghost", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("saves edits and returns the merged record", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "emp-1", domain.RoleEmployee, "Branch A")

		w := env.do(http.MethodPut, "/api/v1/profile", "emp-1", updateProfileRequest{
			Name:        "Jane Doe",
			PhoneNumber: "0733333333",
			JobRole:     "Supervisor",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Jane Doe")

		saved, err := env.store.GetByUID(context.Background(), "emp-1")
		require.NoError(t, err)
		assert.Equal(t, "Supervisor", saved.JobRole)
	})

	t.Run("missing required field is rejected", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "emp-1", domain.RoleEmployee, "Branch A")

		w := env.do(http.MethodPut, "/api/v1/profile", "emp-1", updateProfileRequest{
			Name: "Jane Doe",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "phone_number")

		saved, err := env.store.GetByUID(context.Background(), "emp-1")
		require.NoError(t, err)
		assert.Equal(t, "Jane", saved.Name)
	})
}

func TestGetRoster(t *testing.T) {
	t.Run("admin sees their own site's roster with stats", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "admin-1", domain.RoleAdmin, "Branch A")
		env.seed(t, "emp-1", domain.RoleEmployee, "Branch A")
		env.seed(t, "emp-2", domain.RoleEmployee, "Branch B")

		w := env.do(http.MethodGet, "/api/v1/roster", "admin-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Employees []domain.StaffProfile `json:"employees"`
			Stats     domain.RosterStats    `json:"stats"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Employees, 1)
		assert.Equal(t, "emp-1", resp.Employees[0].UID)
		assert.Equal(t, 1, resp.Stats.TotalEmployees)
	})

	t.Run("employee is refused", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "emp-1", domain.RoleEmployee, "Branch A")

		assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/v1/roster", "emp-1", nil).Code)
	})

	t.Run("admin without a site assignment", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "admin-1", domain.RoleAdmin, "")

		assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/roster", "admin-1", nil).Code)
	})

	t.Run("super admin picks a site explicitly", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "super-1", domain.RoleSuperAdmin, "")
		env.seed(t, "emp-1", domain.RoleEmployee, "Branch B")

		w := env.do(http.MethodGet, "/api/v1/roster?site=Branch+B", "super-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "emp-1")
	})

	t.Run("only a super admin may pick a site", func(t *testing.T) {
		env := setupEnv(t)
		env.seed(t, "admin-1", domain.RoleAdmin, "Branch A")

		assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/v1/roster?site=Branch+B", "admin-1", nil).Code)
	})
}

func TestSignOut(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, "/api/v1/session/signout", "emp-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"emp-1"}, env.sessions.signedOut)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/v1/session/signout", "", nil).Code)
}
