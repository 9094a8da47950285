package authn

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testrequire "github.com/stretchr/testify/require"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/logger"
)

type tokenVerifier struct{ *auth.TokenManager }

func (v tokenVerifier) Verify(token string) (*auth.Principal, error) { return v.Parse(token) }

func setup(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.InitializeWithWriter(io.Discard, "error")

	tokens := auth.NewTokenManager("secret", time.Hour)
	v := tokenVerifier{tokens}

	router := gin.New()
	handler := func(c *gin.Context) {
		p, ok := Principal(c)
		testrequire.True(t, ok)
		c.String(http.StatusOK, p.DisplayName)
	}
	router.GET("/voter", RequireVoter(v), handler)
	router.GET("/admin", RequireAdmin(v), handler)
	return router, tokens
}

func do(router *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireVoter(t *testing.T) {
	router, tokens := setup(t)
	token, _, err := tokens.Issue(auth.Principal{VoterKey: "k1", DisplayName: "Goyo", Role: auth.RoleVoter})
	testrequire.NoError(t, err)

	w := do(router, "/voter", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Goyo", w.Body.String())

	w = do(router, "/voter?token="+token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, do(router, "/voter", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, "/voter", "Bearer nope").Code)
}

func TestRequireVoter_RejectsAdmin(t *testing.T) {
	router, tokens := setup(t)
	adminToken, _, err := tokens.Issue(auth.Principal{VoterKey: "admin:root", DisplayName: "root", Role: auth.RoleAdmin})
	testrequire.NoError(t, err)

	w := do(router, "/voter", "Bearer "+adminToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"permission_denied"`)
}

func TestRequireAdmin(t *testing.T) {
	router, tokens := setup(t)

	voterToken, _, err := tokens.Issue(auth.Principal{VoterKey: "k1", DisplayName: "Goyo", Role: auth.RoleVoter})
	testrequire.NoError(t, err)
	adminToken, _, err := tokens.Issue(auth.Principal{VoterKey: "admin:root", DisplayName: "root", Role: auth.RoleAdmin})
	testrequire.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(router, "/admin", "Bearer "+voterToken).Code)
	assert.Equal(t, http.StatusOK, do(router, "/admin", "Bearer "+adminToken).Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, "/admin", "").Code)
}
