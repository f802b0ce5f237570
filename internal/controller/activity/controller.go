// Package activity exposes the franchisee's activity feed.
package activity

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
	"github.com/Jogatev/chebeneleven-sub000/internal/utilities"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ActivityController handles activity related endpoints
type ActivityController struct {
	Store storage.Storage
	Log   *zap.Logger
}

// NewActivityController creates a new instance of ActivityController.
func NewActivityController(store storage.Storage, log *zap.Logger) *ActivityController {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityController{Store: store, Log: log}
}

// GetMyActivities lists the logged in franchisee's activities, newest first.
// @Summary List my activities
// @Tags Activity
// @Produce json
// @Param limit query integer false "Maximum number of entries, default 50, capped at 200"
// @Success 200 {array} model.Activity
// @Failure 400 {object} utilities.ErrorResponse "Invalid limit"
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /my-activities [get]
func (ac *ActivityController) GetMyActivities(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
	}
	limit = min(limit, maxLimit)

	activities, err := ac.Store.ListActivitiesByUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		ac.Log.Error("failed to fetch activities", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to fetch activities"})
		return
	}

	c.JSON(http.StatusOK, activities)
}
