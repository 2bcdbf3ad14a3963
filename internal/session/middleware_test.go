package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew-app/sitecrew-backend/internal/identity"
)

type fakeVerifier struct {
	id  *identity.Identity
	err error
}

func (f *fakeVerifier) VerifyToken(_ context.Context, _ string) (*identity.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.id, nil
}

func setupRouter(verifier TokenVerifier, revocations RevocationChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(verifier, revocations))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": UserUID(c)})
	})
	return r
}

func doGet(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_MissingToken(t *testing.T) {
	b, _, _ := setupBroker(t)
	r := setupRouter(&fakeVerifier{}, b)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Basic abc").Code)
}

func TestMiddleware_InvalidToken(t *testing.T) {
	b, _, _ := setupBroker(t)
	r := setupRouter(&fakeVerifier{err: errors.New("expired")}, b)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer bad-token").Code)
}

func TestMiddleware_ValidToken(t *testing.T) {
	b, _, _ := setupBroker(t)
	verifier := &fakeVerifier{id: &identity.Identity{UID: "uid-1", IssuedAt: time.Now().Unix()}}
	r := setupRouter(verifier, b)

	w := doGet(r, "Bearer good-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uid-1")
}

func TestMiddleware_SignedOutTokenIsRejected(t *testing.T) {
	b, _, _ := setupBroker(t)

	issued := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return issued.Add(time.Hour) }

	verifier := &fakeVerifier{id: &identity.Identity{UID: "uid-1", IssuedAt: issued.Unix()}}
	r := setupRouter(verifier, b)

	// signed in, then the identity signs out: every screen holding the old
	// token loses access and must redirect
	require.Equal(t, http.StatusOK, doGet(r, "Bearer tok").Code)
	require.NoError(t, b.SignOut(context.Background(), "uid-1"))
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer tok").Code)

	// a fresh sign-in issues a newer token, which passes again
	verifier.id = &identity.Identity{UID: "uid-1", IssuedAt: issued.Add(2 * time.Hour).Unix()}
	assert.Equal(t, http.StatusOK, doGet(r, "Bearer tok2").Code)
}
