package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mecanica_booking/internal/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type recordedRequest struct {
	method, route string
	status        int
}

type fakeObserver struct {
	got []recordedRequest
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, recordedRequest{method, route, status})
}

func newRouter(observer RequestObserver, roles ...entities.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog(observer))
	r.GET("/v1/things/:id", Auth(testSecret), RequireRoles(roles...), func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
	})
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/things/1", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	now := time.Now()

	t.Run("missing token", func(t *testing.T) {
		w := doGet(newRouter(nil, entities.RoleAdmin), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("bad signature", func(t *testing.T) {
		token, err := IssueToken("other-secret", "adm", entities.RoleAdmin, now, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(newRouter(nil, entities.RoleAdmin), token).Code)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := IssueToken(testSecret, "adm", entities.RoleAdmin, now.Add(-2*time.Hour), time.Hour)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(newRouter(nil, entities.RoleAdmin), token).Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Role:             "OWNER",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(newRouter(nil, entities.RoleAdmin), token).Code)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
			Role:             "ADMIN",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "adm", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, doGet(newRouter(nil, entities.RoleAdmin), token).Code)
	})

	t.Run("role not allowed", func(t *testing.T) {
		token, err := IssueToken(testSecret, "cust-1", entities.RoleCustomer, now, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, doGet(newRouter(nil, entities.RoleAdmin, entities.RoleTechnician), token).Code)
	})

	t.Run("allowed and observed", func(t *testing.T) {
		obs := &fakeObserver{}
		token, err := IssueToken(testSecret, "tech-1", entities.RoleTechnician, now, time.Hour)
		require.NoError(t, err)

		w := doGet(newRouter(obs, entities.RoleAdmin, entities.RoleTechnician), token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"tech-1","role":"TECHNICIAN"}`, w.Body.String())
		require.Len(t, obs.got, 1)
		assert.Equal(t, recordedRequest{http.MethodGet, "/v1/things/:id", http.StatusOK}, obs.got[0])
	})
}

func TestRequestID_KeepsCallerValue(t *testing.T) {
	r := newRouter(nil, entities.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/v1/things/1", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RequireRoles(entities.RoleAdmin)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
