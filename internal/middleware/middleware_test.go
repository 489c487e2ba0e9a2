package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopmart-be/internal/metrics"
	"shopmart-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func TestRequireAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")

	t.Run("Missing token", func(t *testing.T) {
		auth := NewAuth(new(MockUserRepo))
		req := httptest.NewRequest("GET", "/api/auth/profile", nil)
		w := httptest.NewRecorder()

		auth.RequireAuth(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "No token provided")
	})

	t.Run("Invalid token", func(t *testing.T) {
		auth := NewAuth(new(MockUserRepo))
		req := httptest.NewRequest("GET", "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()

		auth.RequireAuth(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Deleted account", func(t *testing.T) {
		repo := new(MockUserRepo)
		auth := NewAuth(repo)

		id := primitive.NewObjectID()
		token, _ := user.GenerateJWT(id.Hex(), string(user.RoleUser))
		repo.On("FindByID", mock.Anything, id).Return(nil, user.ErrUserNotFound)

		req := httptest.NewRequest("GET", "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		auth.RequireAuth(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid token attaches identity", func(t *testing.T) {
		repo := new(MockUserRepo)
		auth := NewAuth(repo)

		id := primitive.NewObjectID()
		token, _ := user.GenerateJWT(id.Hex(), string(user.RoleAdmin))
		repo.On("FindByID", mock.Anything, id).Return(&user.User{
			ID:    id,
			Name:  "Admin",
			Email: "admin@example.com",
			Role:  user.RoleAdmin,
		}, nil)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := IdentityFrom(r.Context())
			assert.True(t, ok)
			assert.Equal(t, id, got.UserID)
			assert.Equal(t, user.RoleAdmin, got.Role)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest("GET", "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		auth.RequireAuth(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("No identity", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/products", nil)
		w := httptest.NewRecorder()

		RequireRole(user.RoleAdmin)(okHandler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong role", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/products", nil)
		ctx := WithIdentity(req.Context(), Identity{UserID: primitive.NewObjectID(), Role: user.RoleUser})
		w := httptest.NewRecorder()

		RequireRole(user.RoleAdmin)(okHandler).ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Allowed role", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/products", nil)
		ctx := WithIdentity(req.Context(), Identity{UserID: primitive.NewObjectID(), Role: user.RoleAdmin})
		w := httptest.NewRecorder()

		RequireRole(user.RoleAdmin)(okHandler).ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLogging(t *testing.T) {
	reg := metrics.NewRegistry()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/api/products", nil)
	w := httptest.NewRecorder()

	Logging(reg)(next).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, uint64(1), reg.RequestsTotal.Load())
	assert.Equal(t, uint64(0), reg.RequestErrors.Load())
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Strict tier rejects after the burst", func(t *testing.T) {
		var lastCode int
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest("POST", "/api/auth/login", nil)
			req.RemoteAddr = "198.51.100.7:12345"
			w := httptest.NewRecorder()
			RateLimit(next).ServeHTTP(w, req)
			lastCode = w.Code
		}

		assert.Equal(t, http.StatusTooManyRequests, lastCode)
	})

	t.Run("Authenticated callers share one bucket across addresses", func(t *testing.T) {
		uid := primitive.NewObjectID()
		identity := Identity{UserID: uid, Role: user.RoleUser}

		// Rotate the source address every request: only the user-id key
		// can exhaust the bucket.
		var lastCode int
		for i := 0; i < burstGeneral+1; i++ {
			req := httptest.NewRequest("GET", "/api/orders", nil)
			req.RemoteAddr = fmt.Sprintf("203.0.113.%d:443", i+1)
			req = req.WithContext(WithIdentity(req.Context(), identity))
			w := httptest.NewRecorder()
			RateLimit(next).ServeHTTP(w, req)
			lastCode = w.Code
		}

		assert.Equal(t, http.StatusTooManyRequests, lastCode)

		mu.Lock()
		_, byUser := visitors["user:"+uid.Hex()+":general"]
		mu.Unlock()
		assert.True(t, byUser, "expected a user-keyed bucket")
	})

	t.Run("Authenticated profile requests use the general tier", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/auth/profile", nil)
		limit, burst, tier := resolveRateTier(req)

		assert.Equal(t, limitGeneral, limit)
		assert.Equal(t, burstGeneral, burst)
		assert.Equal(t, "general", tier)
	})
}
