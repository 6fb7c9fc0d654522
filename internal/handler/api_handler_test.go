package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tracker-server/internal/handler"
	"tracker-server/internal/middleware"
	"tracker-server/internal/models"
	"tracker-server/internal/service"
	"tracker-server/internal/service/mocks"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	router   *gin.Engine
	progress *mocks.ProgressService
	tokens   *mocks.TokenService
	teams    *mocks.TeamService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		progress: new(mocks.ProgressService),
		tokens:   new(mocks.TokenService),
		teams:    new(mocks.TeamService),
	}
	env.router = gin.New()
	h := handler.NewAPIHandler(env.progress, env.tokens, env.teams, testJWTSecret)
	// Лимитер в тестах пропускает всё.
	h.RegisterRoutes(env.router, func(c *gin.Context) { c.Next() })
	return env
}

func (env *testEnv) do(method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// apiToken подготавливает резолв API токена с данными разрешениями.
func (env *testEnv) apiToken(userID string, permissions ...string) string {
	value := "token-" + userID
	env.tokens.On("ResolveToken", mock.Anything, value).
		Return(&models.APIToken{Token: value, UserID: userID, Permissions: permissions}, nil)
	return value
}

func (env *testEnv) userJWT(t *testing.T, userID string) string {
	t.Helper()
	token, err := middleware.GenerateTestJWT(userID, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestGetProgressEndpoint(t *testing.T) {
	t.Run("returns formatted progress with meta", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionGetProgress)

		env.progress.On("GetProgress", mock.Anything, "user-1").
			Return(&models.FormattedProgress{UserID: "user-1", PlayerLevel: 15}, nil).Once()

		rec := env.do(http.MethodGet, "/api/v2/progress", bearer, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data models.FormattedProgress `json:"data"`
			Meta struct {
				Self string `json:"self"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "user-1", resp.Data.UserID)
		assert.Equal(t, 15, resp.Data.PlayerLevel)
		assert.Equal(t, "user-1", resp.Meta.Self)
		env.progress.AssertExpectations(t)
	})

	t.Run("rejects requests without a bearer token", func(t *testing.T) {
		env := setupEnv(t)

		rec := env.do(http.MethodGet, "/api/v2/progress", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env.progress.AssertNotCalled(t, "GetProgress", mock.Anything, mock.Anything)
	})

	t.Run("rejects revoked tokens", func(t *testing.T) {
		env := setupEnv(t)
		env.tokens.On("ResolveToken", mock.Anything, "revoked").
			Return(nil, models.ErrTokenNotFound).Once()

		rec := env.do(http.MethodGet, "/api/v2/progress", "revoked", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects tokens without the GP permission", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionWriteProgress)

		rec := env.do(http.MethodGet, "/api/v2/progress", bearer, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		env.progress.AssertNotCalled(t, "GetProgress", mock.Anything, mock.Anything)
	})
}

func TestGetTeamProgressEndpoint(t *testing.T) {
	env := setupEnv(t)
	bearer := env.apiToken("user-1", models.PermissionTeamProgress)

	env.progress.On("GetTeamProgress", mock.Anything, "user-1").
		Return(&service.TeamProgressResult{
			Members: []*models.FormattedProgress{
				{UserID: "user-1"},
				{UserID: "user-2"},
			},
			Hidden: []string{"user-3"},
		}, nil).Once()

	rec := env.do(http.MethodGet, "/api/v2/team/progress", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.FormattedProgress `json:"data"`
		Meta struct {
			Self            string   `json:"self"`
			HiddenTeammates []string `json:"hiddenTeammates"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, "user-1", resp.Meta.Self)
	assert.Equal(t, []string{"user-3"}, resp.Meta.HiddenTeammates)
}

func TestSetPlayerLevelEndpoint(t *testing.T) {
	t.Run("updates the level", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionWriteProgress)

		env.progress.On("SetPlayerLevel", mock.Anything, "user-1", 42).Return(nil).Once()

		rec := env.do(http.MethodPost, "/api/v2/progress/level/42", bearer, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		env.progress.AssertExpectations(t)
	})

	t.Run("rejects non-numeric levels", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionWriteProgress)

		rec := env.do(http.MethodPost, "/api/v2/progress/level/lots", bearer, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.progress.AssertNotCalled(t, "SetPlayerLevel", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("maps validation errors to 400", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionWriteProgress)

		env.progress.On("SetPlayerLevel", mock.Anything, "user-1", 0).
			Return(models.ErrInvalidInput).Once()

		rec := env.do(http.MethodPost, "/api/v2/progress/level/0", bearer, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateTaskEndpoint(t *testing.T) {
	t.Run("moves the task to the requested state", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionWriteProgress)

		env.progress.On("UpdateTask", mock.Anything, "user-1", "task-9", models.TaskStateCompleted).
			Return(nil).Once()

		rec := env.do(http.MethodPost, "/api/v2/progress/task/task-9", bearer,
			map[string]string{"state": "completed"})
		assert.Equal(t, http.StatusOK, rec.Code)
		env.progress.AssertExpectations(t)
	})

	t.Run("rejects a body without state", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionWriteProgress)

		rec := env.do(http.MethodPost, "/api/v2/progress/task/task-9", bearer,
			map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.progress.AssertNotCalled(t, "UpdateTask",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reports 503 while reference data is missing", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionWriteProgress)

		env.progress.On("UpdateTask", mock.Anything, "user-1", "task-9", models.TaskStateCompleted).
			Return(models.ErrGameDataUnavailable).Once()

		rec := env.do(http.MethodPost, "/api/v2/progress/task/task-9", bearer,
			map[string]string{"state": "completed"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("requires the WP permission", func(t *testing.T) {
		env := setupEnv(t)
		bearer := env.apiToken("user-1", models.PermissionGetProgress)

		rec := env.do(http.MethodPost, "/api/v2/progress/task/task-9", bearer,
			map[string]string{"state": "completed"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUpdateObjectiveEndpoint(t *testing.T) {
	env := setupEnv(t)
	bearer := env.apiToken("user-1", models.PermissionWriteProgress)

	env.progress.On("UpdateObjective", mock.Anything, "user-1", "obj-3",
		mock.MatchedBy(func(state *models.TaskState) bool {
			return state != nil && *state == models.TaskStateCompleted
		}),
		mock.MatchedBy(func(count *int) bool {
			return count != nil && *count == 4
		})).Return(nil).Once()

	rec := env.do(http.MethodPost, "/api/v2/progress/objective/obj-3", bearer,
		map[string]interface{}{"state": "completed", "count": 4})
	assert.Equal(t, http.StatusOK, rec.Code)
	env.progress.AssertExpectations(t)
}

func TestTokenEndpoints(t *testing.T) {
	t.Run("lists own tokens", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "user-1")

		env.tokens.On("ListTokens", mock.Anything, "user-1").
			Return([]models.APIToken{{Token: "tok-a", Note: "home"}}, nil).Once()

		rec := env.do(http.MethodGet, "/api/v2/token", jwt, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Tokens []models.APIToken `json:"tokens"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Tokens, 1)
		assert.Equal(t, "home", resp.Tokens[0].Note)
	})

	t.Run("creates a token", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "user-1")

		env.tokens.On("CreateToken", mock.Anything, "user-1", "my pc",
			[]string{models.PermissionGetProgress}).
			Return(&models.APIToken{Token: "fresh", Note: "my pc"}, nil).Once()

		rec := env.do(http.MethodPost, "/api/v2/token", jwt, map[string]interface{}{
			"note":        "my pc",
			"permissions": []string{models.PermissionGetProgress},
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp models.APIToken
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "fresh", resp.Token)
		env.tokens.AssertExpectations(t)
	})

	t.Run("token limit maps to 409", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "user-1")

		env.tokens.On("CreateToken", mock.Anything, "user-1", "",
			[]string{models.PermissionGetProgress}).
			Return(nil, models.ErrTokenLimitReached).Once()

		rec := env.do(http.MethodPost, "/api/v2/token", jwt, map[string]interface{}{
			"permissions": []string{models.PermissionGetProgress},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("revokes a token", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "user-1")

		env.tokens.On("DeleteToken", mock.Anything, "user-1", "tok-a").Return(nil).Once()

		rec := env.do(http.MethodDelete, "/api/v2/token/tok-a", jwt, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		env.tokens.AssertExpectations(t)
	})

	t.Run("rejects garbage JWTs", func(t *testing.T) {
		env := setupEnv(t)

		rec := env.do(http.MethodGet, "/api/v2/token", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env.tokens.AssertNotCalled(t, "ListTokens", mock.Anything, mock.Anything)
	})

	t.Run("rejects expired JWTs", func(t *testing.T) {
		env := setupEnv(t)
		expired, err := middleware.GenerateTestJWT("user-1", testJWTSecret, -time.Minute)
		require.NoError(t, err)

		rec := env.do(http.MethodGet, "/api/v2/token", expired, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTeamEndpoints(t *testing.T) {
	t.Run("creates a team", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "owner-1")

		env.teams.On("CreateTeam", mock.Anything, "owner-1").
			Return(&models.Team{ID: "team-1", OwnerID: "owner-1"}, nil).Once()

		rec := env.do(http.MethodPost, "/api/v2/team", jwt, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp models.Team
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "team-1", resp.ID)
	})

	t.Run("wrong invite password maps to 401", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "user-2")

		env.teams.On("JoinTeam", mock.Anything, "user-2", "team-1", "nope").
			Return(nil, models.ErrTeamWrongPassword).Once()

		rec := env.do(http.MethodPost, "/api/v2/team/join", jwt,
			map[string]string{"id": "team-1", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("full team maps to 409", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "user-2")

		env.teams.On("JoinTeam", mock.Anything, "user-2", "team-1", "pw").
			Return(nil, models.ErrTeamFull).Once()

		rec := env.do(http.MethodPost, "/api/v2/team/join", jwt,
			map[string]string{"id": "team-1", "password": "pw"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("kick by non-owner maps to 403", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "user-2")

		env.teams.On("KickMember", mock.Anything, "user-2", "user-3").
			Return(models.ErrNotTeamOwner).Once()

		rec := env.do(http.MethodPost, "/api/v2/team/kick/user-3", jwt, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("updates hidden teammates", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "user-1")

		env.teams.On("SetHiddenTeammates", mock.Anything, "user-1", []string{"user-2"}).
			Return(nil).Once()

		rec := env.do(http.MethodPost, "/api/v2/team/hide", jwt,
			map[string]interface{}{"users": []string{"user-2"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		env.teams.AssertExpectations(t)
	})

	t.Run("leave without a team maps to 404", func(t *testing.T) {
		env := setupEnv(t)
		jwt := env.userJWT(t, "loner")

		env.teams.On("LeaveTeam", mock.Anything, "loner").
			Return(models.ErrNotInTeam).Once()

		rec := env.do(http.MethodPost, "/api/v2/team/leave", jwt, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
