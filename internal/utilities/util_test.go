package utilities

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Jogatev/chebeneleven-sub000/internal/model"
)

func newContext(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestExtractUser(t *testing.T) {
	c := newContext(httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := ExtractUser(c)
	assert.Error(t, err)

	c.Set(UserContextKey, "not a user")
	_, err = ExtractUser(c)
	assert.EqualError(t, err, "Failed to assert type")

	c.Set(UserContextKey, model.User{ID: 4, Username: "store4"})
	user, err := ExtractUser(c)
	assert.NoError(t, err)
	assert.Equal(t, uint(4), user.ID)
}

func TestParseID(t *testing.T) {
	c := newContext(httptest.NewRequest(http.MethodGet, "/", nil))

	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, err := ParseID(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, bad := range []string{"abc", "0", "-3", ""} {
		c.Params = gin.Params{{Key: "id", Value: bad}}
		_, err := ParseID(c, "id")
		assert.Error(t, err, bad)
	}
}

func TestExtractSessionToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractSessionToken(newContext(req), "sid")
	assert.ErrorIs(t, err, ErrNoToken)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	token, err := ExtractSessionToken(newContext(req), "sid")
	assert.NoError(t, err)
	assert.Equal(t, "header-token", token)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: "sid", Value: "cookie-token"})
	token, err = ExtractSessionToken(newContext(req), "sid")
	assert.NoError(t, err)
	assert.Equal(t, "cookie-token", token, "cookie wins over header")
}

func TestExtractBearerTokenRejectsOtherSchemes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err := ExtractBearerToken(newContext(req))
	assert.Error(t, err)
}
