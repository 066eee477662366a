package handlers

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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/corelord/corelord/internal/database"
	"github.com/corelord/corelord/internal/middleware"
)

// mockPool adapts pgxmock to the DatabasePool interface.
type mockPool struct {
	mock pgxmock.PgxPoolIface
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.mock.QueryRow(ctx, sql, args...)
}

func (m *mockPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	result, err := m.mock.Exec(ctx, sql, args...)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", result.RowsAffected())), nil
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return m.mock.Query(ctx, sql, args...)
}

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.mock.Begin(ctx)
}

var _ database.DatabasePool = (*mockPool)(nil)

func userTestSetup(t *testing.T) (pgxmock.PgxPoolIface, *UserHandler, *gin.Engine) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	handler := NewUserHandler(&mockPool{mock: mock}, auth, bcrypt.MinCost)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/register", handler.RegisterUser)
	router.POST("/login", handler.LoginUser)
	router.GET("/profile", auth.RequireAuth(), handler.GetUserProfile)
	router.PUT("/profile", auth.RequireAuth(), handler.UpdateUserProfile)
	return mock, handler, router
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const userRows = "id, email, password_hash, name, phone, country, telegram_chat_id, alerts_enabled, created_at, updated_at"

func userRowValues(id, email, passwordHash string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "email", "password_hash", "name", "phone", "country",
		"telegram_chat_id", "alerts_enabled", "created_at", "updated_at",
	}).AddRow(id, email, passwordHash, (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), false, now, now)
}

func TestRegisterUser_Success(t *testing.T) {
	mock, _, router := userTestSetup(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("kai@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "kai@example.com", pgxmock.AnyArg(), (*string)(nil), (*string)(nil), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/register", RegisterRequest{
		Email:    "kai@example.com",
		Password: "longenough",
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "kai@example.com")
	assert.NotContains(t, w.Body.String(), "password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	mock, _, router := userTestSetup(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("kai@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/register", RegisterRequest{
		Email:    "kai@example.com",
		Password: "longenough",
	}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUser_InvalidBody(t *testing.T) {
	_, _, router := userTestSetup(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/register", gin.H{
		"email":    "not-an-email",
		"password": "short",
	}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginUser_Success(t *testing.T) {
	mock, _, router := userTestSetup(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT " + userRows).
		WithArgs("kai@example.com").
		WillReturnRows(userRowValues("user-1", "kai@example.com", string(hash)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/login", LoginRequest{
		Email:    "kai@example.com",
		Password: "longenough",
	}))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.User.ID)
	assert.NotEmpty(t, resp.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUser_WrongPassword(t *testing.T) {
	mock, _, router := userTestSetup(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT " + userRows).
		WithArgs("kai@example.com").
		WillReturnRows(userRowValues("user-1", "kai@example.com", string(hash)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/login", LoginRequest{
		Email:    "kai@example.com",
		Password: "a-wrong-password",
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUser_UnknownEmail(t *testing.T) {
	mock, _, router := userTestSetup(t)

	mock.ExpectQuery("SELECT " + userRows).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPost, "/login", LoginRequest{
		Email:    "ghost@example.com",
		Password: "longenough",
	}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserProfile_Success(t *testing.T) {
	mock, handler, router := userTestSetup(t)

	token, err := handler.auth.GenerateToken("user-1", "kai@example.com")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT " + userRows).
		WithArgs("user-1").
		WillReturnRows(userRowValues("user-1", "kai@example.com", "hash"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kai@example.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserProfile_RequiresToken(t *testing.T) {
	_, _, router := userTestSetup(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateUserProfile_Success(t *testing.T) {
	mock, handler, router := userTestSetup(t)

	token, err := handler.auth.GenerateToken("user-1", "kai@example.com")
	require.NoError(t, err)

	name := "Kai"
	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", &name, (*string)(nil), (*string)(nil), (*string)(nil), (*bool)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT " + userRows).
		WithArgs("user-1").
		WillReturnRows(userRowValues("user-1", "kai@example.com", "hash"))

	w := httptest.NewRecorder()
	req := jsonRequest(http.MethodPut, "/profile", UpdateProfileRequest{Name: &name})
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserProfile_UnknownUser(t *testing.T) {
	mock, handler, router := userTestSetup(t)

	token, err := handler.auth.GenerateToken("ghost", "ghost@example.com")
	require.NoError(t, err)

	mock.ExpectExec("UPDATE users").
		WithArgs("ghost", (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*bool)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	w := httptest.NewRecorder()
	req := jsonRequest(http.MethodPut, "/profile", UpdateProfileRequest{})
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
