package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeSessions map[string]int64

func (s fakeSessions) GetUserID(_ context.Context, id string) (int64, bool) {
	userID, ok := s[id]
	return userID, ok
}

func newProtectedRouter(sessions Sessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireSession(sessions), func(c *gin.Context) {
		c.String(http.StatusOK, "user=%d", UserIDFromContext(c))
	})
	return r
}

func TestRequireSessionRedirectsWithoutCookie(t *testing.T) {
	r := newProtectedRouter(fakeSessions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}
}

func TestRequireSessionRedirectsOnUnknownSession(t *testing.T) {
	r := newProtectedRouter(fakeSessions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
}

func TestRequireSessionSetsUserID(t *testing.T) {
	r := newProtectedRouter(fakeSessions{"good": 42})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "user=42" {
		t.Errorf("body = %q, want user=42", w.Body.String())
	}
}
