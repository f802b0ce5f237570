// Package job provides HTTP handlers for job listing related operations.
package job

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/audit"
	"github.com/Jogatev/chebeneleven-sub000/internal/model"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
	"github.com/Jogatev/chebeneleven-sub000/internal/utilities"
)

// JobController handles job listing related endpoints
type JobController struct {
	Store storage.Storage
	Audit *audit.Recorder
	Log   *zap.Logger
}

// NewJobController creates a new instance of JobController
func NewJobController(store storage.Storage, recorder *audit.Recorder, log *zap.Logger) *JobController {
	if log == nil {
		log = zap.NewNop()
	}
	return &JobController{
		Store: store,
		Audit: recorder,
		Log:   log,
	}
}

func (jc *JobController) record(c *gin.Context, userID uint, action string, job *model.JobListing, details gin.H) {
	if jc.Audit == nil {
		return
	}
	if details == nil {
		details = gin.H{}
	}
	details["title"] = job.Title
	jc.Audit.Record(c.Request.Context(), userID, action, model.EntityJob, job.ID, details)
}

func (jc *JobController) internalError(c *gin.Context, msg string, err error) {
	jc.Log.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: msg})
}

// loadOwnedJob fetches the job named by the :id path parameter and checks that user owns it.
// It writes the error response itself and returns nil when the request must stop.
func (jc *JobController) loadOwnedJob(c *gin.Context, user model.User, verb string) *model.JobListing {
	id, err := utilities.ParseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return nil
	}

	job, err := jc.Store.GetJob(c.Request.Context(), id)
	if err != nil {
		jc.internalError(c, "Failed to retrieve job listing", err)
		return nil
	}
	if job == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job listing not found"})
		return nil
	}

	if job.UserID != user.ID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to " + verb + " this job listing",
		})
		return nil
	}
	return job
}

// GetJobs returns job listings matching the query.
// @Summary List job listings
// @Description Every query is optional. Only active listings are returned unless status or all=true is given
// @Tags Job
// @Produce json
// @Param status query string false "active (default), filled, closed or archived"
// @Param all query boolean false "Ignore the status filter"
// @Param search query string false "Case insensitive substring of the title"
// @Param location query string false "Case insensitive substring of the location"
// @Param type query string false "Case insensitive substring of the job type"
// @Param department query string false "Case insensitive substring of the department"
// @Param order query string false "asc for oldest first, newest first otherwise"
// @Success 200 {array} model.JobListing
// @Failure 400 {object} utilities.ErrorResponse "Unknown status"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /jobs [get]
func (jc *JobController) GetJobs(c *gin.Context) {
	filter := storage.JobFilter{
		Status:     model.JobStatusActive,
		Search:     strings.TrimSpace(c.Query("search")),
		Location:   strings.TrimSpace(c.Query("location")),
		Type:       strings.TrimSpace(c.Query("type")),
		Department: strings.TrimSpace(c.Query("department")),
		Ascending:  strings.EqualFold(c.Query("order"), "asc"),
	}

	if status := c.Query("status"); status != "" {
		if !model.IsValidJobStatus(status) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Unknown job status: " + status})
			return
		}
		filter.Status = status
	}
	if strings.EqualFold(c.Query("all"), "true") {
		filter.Status = ""
	}

	jobs, err := jc.Store.ListJobs(c.Request.Context(), filter)
	if err != nil {
		jc.internalError(c, "Failed to fetch job listings", err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJobByID returns one job listing.
// @Summary Get job listing by ID
// @Tags Job
// @Produce json
// @Param id path integer true "ID of desired job listing"
// @Success 200 {object} model.JobListing
// @Failure 400 {object} utilities.ErrorResponse "Invalid id"
// @Failure 404 {object} utilities.ErrorResponse "Job listing not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /jobs/{id} [get]
func (jc *JobController) GetJobByID(c *gin.Context) {
	id, err := utilities.ParseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, err := jc.Store.GetJob(c.Request.Context(), id)
	if err != nil {
		jc.internalError(c, "Failed to retrieve job listing", err)
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job listing not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// CreateJob creates a job listing owned by the logged in franchisee.
// @Summary Create job listing
// @Tags Job
// @Accept json
// @Produce json
// @Param Job body model.EditableJobInfo true "Job listing information"
// @Success 201 {object} model.JobListing
// @Failure 400 {object} utilities.ErrorResponse "Invalid job listing"
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /jobs [post]
func (jc *JobController) CreateJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job := model.JobListing{}
	if err := c.ShouldBindJSON(&job.EditableJobInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}
	job.UserID = user.ID

	created, err := jc.Store.CreateJob(c.Request.Context(), job)
	if err != nil {
		jc.internalError(c, "Failed to create job listing", err)
		return
	}

	jc.record(c, user.ID, model.ActionCreateJob, created, nil)
	c.JSON(http.StatusCreated, created)
}

// UpdateJob applies a partial update to a job listing the franchisee owns.
// @Summary Edit job listing
// @Description Only the franchisee that owns the listing may edit it
// @Tags Job
// @Accept json
// @Produce json
// @Param id path integer true "ID of desired job listing"
// @Param Job body model.JobUpdate true "Fields to change"
// @Success 200 {object} model.JobListing
// @Failure 400 {object} utilities.ErrorResponse "Invalid id or body"
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job listing not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /jobs/{id} [patch]
func (jc *JobController) UpdateJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job := jc.loadOwnedJob(c, user, "edit")
	if job == nil {
		return
	}

	var update model.JobUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}
	if update.IsEmpty() {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "No fields to update"})
		return
	}

	updated, err := jc.Store.UpdateJob(c.Request.Context(), job.ID, update)
	if err != nil {
		jc.internalError(c, "Failed to update job listing", err)
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job listing not found"})
		return
	}

	changed := make([]string, 0, len(update.Columns()))
	for col := range update.Columns() {
		changed = append(changed, col)
	}
	jc.record(c, user.ID, model.ActionUpdateJob, updated, gin.H{"fields": changed})
	c.JSON(http.StatusOK, updated)
}

// DeleteJob deletes a job listing the franchisee owns together with its applications.
// @Summary Delete job listing
// @Description Only the franchisee that owns the listing may delete it
// @Tags Job
// @Param id path integer true "ID of desired job listing"
// @Success 204 "Deleted"
// @Failure 400 {object} utilities.ErrorResponse "Invalid id"
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job listing not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /jobs/{id} [delete]
func (jc *JobController) DeleteJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job := jc.loadOwnedJob(c, user, "delete")
	if job == nil {
		return
	}

	deleted, err := jc.Store.DeleteJob(c.Request.Context(), job.ID)
	if err != nil {
		jc.internalError(c, "Failed to delete job listing", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job listing not found"})
		return
	}

	jc.record(c, user.ID, model.ActionDeleteJob, job, nil)
	c.Status(http.StatusNoContent)
}

// GetMyJobs returns every listing of the logged in franchisee, whatever its status.
// @Summary List my job listings
// @Tags Job
// @Produce json
// @Success 200 {array} model.JobListing
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /my-jobs [get]
func (jc *JobController) GetMyJobs(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobs, err := jc.Store.ListJobs(c.Request.Context(), storage.JobFilter{UserID: user.ID})
	if err != nil {
		jc.internalError(c, "Failed to fetch job listings", err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJobApplications returns the applications of one listing the franchisee owns.
// @Summary List applications of a job listing
// @Tags Job
// @Produce json
// @Param id path integer true "ID of desired job listing"
// @Success 200 {array} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Invalid id"
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job listing not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /jobs/{id}/applications [get]
func (jc *JobController) GetJobApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job := jc.loadOwnedJob(c, user, "view applications of")
	if job == nil {
		return
	}

	apps, err := jc.Store.ListApplicationsByJobs(c.Request.Context(), []uint{job.ID})
	if err != nil {
		jc.internalError(c, "Failed to fetch applications", err)
		return
	}

	c.JSON(http.StatusOK, apps)
}
