package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/utils"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		actor := ActorFromContext(c)
		c.JSON(http.StatusOK, actor)
	})
	return r
}

func TestAuthRequired_AcceptsTokenWithSecretFromEnv(t *testing.T) {
	// La clé arrive après l'init du package, comme avec un .env chargé
	// au démarrage
	t.Setenv("JWT_SECRET", "clé-de-test")

	token, err := utils.GenerateJWT(models.User{
		ID:    "u-1",
		Email: "amelie@veltra.io",
		Name:  "Amélie",
		Role:  "admin",
	})
	require.NoError(t, err)

	r := authTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "amelie@veltra.io")
	assert.Contains(t, rr.Body.String(), "admin")
}

func TestAuthRequired_RejectsMissingOrBadToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "clé-de-test")
	r := authTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer pas-un-jwt")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthRequired_RejectsTokenSignedWithOtherSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "autre-clé")
	token, err := utils.GenerateJWT(models.User{ID: "u-1", Email: "a@veltra.io"})
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "clé-de-test")
	r := authTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
