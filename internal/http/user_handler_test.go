package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"social-app/internal/domain"
	"social-app/internal/repository"
	"social-app/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	if _, exists := m.usersByEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func setupAuthRouter(repo repository.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService("secret", time.Hour)
	userSvc := service.NewUserService(zap.NewNop(), repo, nil)
	h := NewUserHandler(zap.NewNop(), userSvc, tokens)
	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	return r
}

func performRequest(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestSignup_Success(t *testing.T) {
	r := setupAuthRouter(newMockUserRepo())

	rec := performRequest(r, http.MethodPost, "/signup", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	if body["token"] == "" || body["token"] == nil {
		t.Fatalf("expected token in response")
	}
	if body["id"] == "" || body["id"] == nil {
		t.Fatalf("expected id in response")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	r := setupAuthRouter(newMockUserRepo())
	payload := map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}

	if rec := performRequest(r, http.MethodPost, "/signup", "", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first signup: expected 201, got %d", rec.Code)
	}
	rec := performRequest(r, http.MethodPost, "/signup", "", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second signup: expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("expected failure envelope, got %v", body)
	}
}

func TestSignup_Validation(t *testing.T) {
	r := setupAuthRouter(newMockUserRepo())

	cases := []map[string]string{
		{"name": "Al", "email": "al@example.com", "password": "password123"},
		{"name": "Alice", "email": "not-an-email", "password": "password123"},
		{"name": "Alice", "email": "alice@example.com", "password": "short"},
	}
	for _, payload := range cases {
		if rec := performRequest(r, http.MethodPost, "/signup", "", payload); rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %v: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestLogin_UniformErrorForBadCredentials(t *testing.T) {
	r := setupAuthRouter(newMockUserRepo())

	if rec := performRequest(r, http.MethodPost, "/signup", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", rec.Code)
	}

	unknown := performRequest(r, http.MethodPost, "/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	wrongPass := performRequest(r, http.MethodPost, "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})

	if unknown.Code != http.StatusUnauthorized || wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", unknown.Code, wrongPass.Code)
	}
	// La misma respuesta para email desconocido y contraseña incorrecta.
	if unknown.Body.String() != wrongPass.Body.String() {
		t.Fatalf("expected identical bodies, got %q vs %q", unknown.Body.String(), wrongPass.Body.String())
	}
}

func TestLogin_Success(t *testing.T) {
	r := setupAuthRouter(newMockUserRepo())

	if rec := performRequest(r, http.MethodPost, "/signup", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", rec.Code)
	}

	rec := performRequest(r, http.MethodPost, "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["name"] != "Alice" || body["token"] == nil {
		t.Fatalf("expected name and token, got %v", body)
	}
}
