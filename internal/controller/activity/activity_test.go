package activity

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jogatev/chebeneleven-sub000/internal/model"
	"github.com/Jogatev/chebeneleven-sub000/internal/testutil"
)

func newRouter(env *testutil.Env) *gin.Engine {
	ac := NewActivityController(env.Store, env.Log)
	r := gin.New()
	r.GET("/my-activities", env.RequireAuth(), ac.GetMyActivities)
	return r
}

func seedActivities(t *testing.T, env *testutil.Env, userID uint, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		ok := env.Audit.Record(context.Background(), userID, model.ActionCreateJob, model.EntityJob, uint(i), gin.H{"n": i})
		require.True(t, ok)
	}
}

func TestGetMyActivities(t *testing.T) {
	env := testutil.NewEnv(t)
	user, token := env.CreateFranchisee(t)
	other, _ := env.CreateFranchisee(t)
	seedActivities(t, env, user.ID, 3)
	seedActivities(t, env, other.ID, 2)
	r := newRouter(env)

	rec, activities := testutil.MakeJSONListRequest(token, r, "/my-activities")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, activities, 3)
	for _, a := range activities {
		assert.Equal(t, float64(user.ID), a["userId"])
	}
	assert.Equal(t, float64(3), activities[0]["entityId"], "newest first")
}

func TestGetMyActivities_limit(t *testing.T) {
	env := testutil.NewEnv(t)
	user, token := env.CreateFranchisee(t)
	seedActivities(t, env, user.ID, 60)
	r := newRouter(env)

	_, activities := testutil.MakeJSONListRequest(token, r, "/my-activities")
	assert.Len(t, activities, 50)

	_, activities = testutil.MakeJSONListRequest(token, r, "/my-activities?limit=5")
	assert.Len(t, activities, 5)

	_, activities = testutil.MakeJSONListRequest(token, r, "/my-activities?limit=5000")
	assert.Len(t, activities, 60)

	for _, bad := range []string{"0", "-1", "ten"} {
		rec, _ := testutil.MakeJSONRequest(nil, token, r, fmt.Sprintf("/my-activities?limit=%s", bad), http.MethodGet)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestGetMyActivities_empty(t *testing.T) {
	env := testutil.NewEnv(t)
	_, token := env.CreateFranchisee(t)
	r := newRouter(env)

	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/my-activities", http.MethodGet)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetMyActivities_requiresAuth(t *testing.T) {
	env := testutil.NewEnv(t)
	r := newRouter(env)

	rec, _ := testutil.MakeJSONRequest(nil, "", r, "/my-activities", http.MethodGet)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
