package routers

import (
	"bytes"
	"coursemanager/middleware"
	"coursemanager/models"
	"coursemanager/testutil"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.UseGlobal(t, db)
	return NewApp(), db
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(user, time.Hour)
	require.NoError(t, err)
	return token
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, env := do(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Status)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp, env := do(t, app, http.MethodGet, "/courses", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Status)
}

func TestLoginSetsRefreshCookie(t *testing.T) {
	app, db := newTestApp(t)
	user := testutil.CreateUser(t, db, models.RoleStudentID)

	resp, env := do(t, app, http.MethodPost, "/login", "", fiber.Map{"username": user.Username, "password": testutil.Password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.AccessToken)
	assert.Equal(t, "bearer", data.TokenType)

	var refresh *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.RefreshCookie {
			refresh = c
		}
	}
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refresh.Name, Value: refresh.Value})
	refreshed, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, refreshed.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/courses", data.AccessToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app, db := newTestApp(t)
	user := testutil.CreateUser(t, db, models.RoleStudentID)

	resp, env := do(t, app, http.MethodPost, "/login", "", fiber.Map{"username": user.Username, "password": "wrong-password"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Status)
}

func TestRefreshWithoutCookie(t *testing.T) {
	app, _ := newTestApp(t)

	resp, env := do(t, app, http.MethodPost, "/auth/refresh-token", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Refresh token missing!", env.Message)
}

func TestCourseRoutesEnforceRoles(t *testing.T) {
	app, db := newTestApp(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	student := testutil.CreateUser(t, db, models.RoleStudentID)

	resp, _ := do(t, app, http.MethodPost, "/courses", tokenFor(t, student), fiber.Map{"title": "Go 101"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, http.MethodPost, "/courses", tokenFor(t, teacher), fiber.Map{"title": ""})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, env := do(t, app, http.MethodPost, "/courses", tokenFor(t, teacher), fiber.Map{"title": "Go 101", "description": "basics"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	resp, _ = do(t, app, http.MethodPost, "/courses", tokenFor(t, teacher), fiber.Map{"title": "Go 101"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/admin/overview", tokenFor(t, teacher), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestEnrollIsIdempotentOverHTTP(t *testing.T) {
	app, db := newTestApp(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	student := testutil.CreateUser(t, db, models.RoleStudentID)
	c := testutil.CreateCourse(t, db, teacher)
	token := tokenFor(t, student)

	path := "/courses/" + strconv.FormatUint(uint64(c.ID), 10) + "/enroll"
	resp, _ := do(t, app, http.MethodPost, path, token, nil)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, env := do(t, app, http.MethodPost, path, token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Already enrolled!", env.Message)
}

func TestSweepTriggerIsAdminOnly(t *testing.T) {
	app, db := newTestApp(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	admin := testutil.Admin(t, db)

	resp, _ := do(t, app, http.MethodPost, "/attendances/expire", tokenFor(t, teacher), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env := do(t, app, http.MethodPost, "/attendances/expire", tokenFor(t, admin), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Marked 0 absences!", env.Message)
}
