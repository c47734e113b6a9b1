package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wastewise/backend/auth"
	"github.com/wastewise/backend/database"
	"github.com/wastewise/backend/logging"
	"github.com/wastewise/backend/models"
	"golang.org/x/crypto/bcrypt"
)

type nopNotifier struct{}

func (nopNotifier) Send(context.Context, string, string, models.CodeType) error { return nil }

func newTestService(t *testing.T) (*auth.Service, *database.MemoryAccounts) {
	t.Helper()
	accounts := database.NewMemoryAccounts()
	log := logging.Discard()
	broker := auth.NewBroker(database.NewMemoryCodes(), nopNotifier{}, 0, 0, log)
	signer := auth.NewJWTSigner([]byte("middleware-secret-middleware-secret"), 0)
	return auth.NewService(accounts, broker, auth.NewBcryptHasher(bcrypt.MinCost, 2), signer, log), accounts
}

func newRouter(svc *auth.Service, gate gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/open", func(c *gin.Context) {
		id, _ := c.Get("requestID")
		c.String(http.StatusOK, id.(string))
	})
	guarded := r.Group("/", AuthMiddleware(svc))
	guarded.GET("/whoami", func(c *gin.Context) {
		a, ok := CurrentAccount(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, a.Email)
	})
	guarded.GET("/gated", gate, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	svc, _ := newTestService(t)
	r := newRouter(svc, RequirePermission(auth.PermInventoryRead))

	w := do(r, "/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	require.Len(t, id, 36)
	require.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	svc, _ := newTestService(t)
	r := newRouter(svc, RequirePermission(auth.PermInventoryRead))

	require.Equal(t, http.StatusUnauthorized, do(r, "/whoami", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(r, "/whoami", "not-a-jwt").Code)

	session, err := svc.Register(context.Background(), "Ana", "ana@example.com", "hunter22")
	require.NoError(t, err)
	w := do(r, "/whoami", session.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ana@example.com", w.Body.String())
}

func TestRequirePermission(t *testing.T) {
	svc, _ := newTestService(t)
	session, err := svc.Register(context.Background(), "Ana", "ana@example.com", "hunter22")
	require.NoError(t, err)

	require.Equal(t, http.StatusNoContent, do(newRouter(svc, RequirePermission(auth.PermWasteWrite)), "/gated", session.Token).Code)

	w := do(newRouter(svc, RequirePermission(auth.PermUsersWrite)), "/gated", session.Token)
	require.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "forbidden", body["error"])
	require.Equal(t, "users:write", body["required"])
	require.Equal(t, "user", body["role"])
}

func TestRequireRoleSeesRoleChanges(t *testing.T) {
	svc, accounts := newTestService(t)
	session, err := svc.Register(context.Background(), "Ana", "ana@example.com", "hunter22")
	require.NoError(t, err)
	r := newRouter(svc, RequireRole(models.RoleAdmin, models.RoleManager))

	w := do(r, "/gated", session.Token)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "role:admin|role:manager")

	require.NoError(t, accounts.SetRole(context.Background(), session.Account.ID, models.RoleManager))
	require.Equal(t, http.StatusNoContent, do(r, "/gated", session.Token).Code)
}

func TestGateWithoutAuthContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequirePermission(auth.PermInventoryRead), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	require.Equal(t, http.StatusUnauthorized, do(r, "/x", "").Code)
}
