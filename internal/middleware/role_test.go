package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func runRoleGate(t *testing.T, role string, allowed ...string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin", nil)
	if role != "" {
		c.Set("userRole", role)
	}

	RequireRole(allowed...)(c)
	return c, w
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	c, _ := runRoleGate(t, "ADMIN", "ADMIN", "STAFF")
	require.False(t, c.IsAborted())
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	c, w := runRoleGate(t, "CUSTOMER", "ADMIN")
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleRejectsUnauthenticated(t *testing.T) {
	c, w := runRoleGate(t, "", "ADMIN")
	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
