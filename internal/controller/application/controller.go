// Package application provides HTTP handlers for job application operations.
package application

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Jogatev/chebeneleven-sub000/internal/audit"
	"github.com/Jogatev/chebeneleven-sub000/internal/model"
	"github.com/Jogatev/chebeneleven-sub000/internal/notify"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
	"github.com/Jogatev/chebeneleven-sub000/internal/utilities"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	Store    storage.Storage
	Audit    *audit.Recorder
	Notifier *notify.Notifier
	Log      *zap.Logger
}

// NewApplicationController creates a new instance of ApplicationController.
func NewApplicationController(store storage.Storage, recorder *audit.Recorder, notifier *notify.Notifier, log *zap.Logger) *ApplicationController {
	if log == nil {
		log = zap.NewNop()
	}
	return &ApplicationController{
		Store:    store,
		Audit:    recorder,
		Notifier: notifier,
		Log:      log,
	}
}

type statusUpdate struct {
	Status string `json:"status" binding:"required"`
}

func (ac *ApplicationController) internalError(c *gin.Context, msg string, err error) {
	ac.Log.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: msg})
}

// SubmitApplication stores an anonymous application for an active job listing.
// @Summary Apply to a job listing
// @Description No login required. The listing must exist and be active
// @Tags Application
// @Accept json
// @Produce json
// @Param application body model.ApplicantInfo true "Application information"
// @Success 201 {object} model.Application "Application stored, referenceId can be used for tracking"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or listing not accepting applications"
// @Failure 404 {object} utilities.ErrorResponse "Job listing not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications [post]
func (ac *ApplicationController) SubmitApplication(c *gin.Context) {
	info := model.ApplicantInfo{}
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	job, err := ac.Store.GetJob(ctx, info.JobID)
	if err != nil {
		ac.internalError(c, "Failed to retrieve job listing", err)
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job listing not found"})
		return
	}
	if job.Status != model.JobStatusActive {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "This job listing is no longer accepting applications",
		})
		return
	}

	app, err := ac.Store.CreateApplication(ctx, model.Application{ApplicantInfo: info})
	if errors.Is(err, storage.ErrUnknownJob) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job listing not found"})
		return
	}
	if err != nil {
		ac.internalError(c, "Failed to submit application", err)
		return
	}

	if ac.Audit != nil {
		ac.Audit.Record(ctx, job.UserID, model.ActionSubmitApplication, model.EntityApplication, app.ID, gin.H{
			"jobId":         job.ID,
			"jobTitle":      job.Title,
			"applicantName": strings.TrimSpace(app.FirstName + " " + app.LastName),
			"referenceId":   app.ReferenceID,
		})
	}
	ac.Notifier.ApplicationReceived(ctx, *app, *job)

	c.JSON(http.StatusCreated, app)
}

// TrackApplication lets an applicant look up their application by reference id.
// @Summary Track an application
// @Tags Application
// @Produce json
// @Param referenceId path string true "Reference id, e.g. SEV-2025-AB12C"
// @Success 200 {object} model.ApplicationTracking
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications/track/{referenceId} [get]
func (ac *ApplicationController) TrackApplication(c *gin.Context) {
	ref := strings.ToUpper(strings.TrimSpace(c.Param("referenceId")))
	ctx := c.Request.Context()

	app, err := ac.Store.GetApplicationByReference(ctx, ref)
	if err != nil {
		ac.internalError(c, "Failed to retrieve application", err)
		return
	}
	if app == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
		return
	}

	tracking := model.ApplicationTracking{
		ReferenceID: app.ReferenceID,
		Status:      app.Status,
		SubmittedAt: app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}

	job, err := ac.Store.GetJob(ctx, app.JobID)
	if err != nil {
		ac.internalError(c, "Failed to retrieve job listing", err)
		return
	}
	if job != nil {
		tracking.JobTitle = job.Title
		tracking.JobLocation = job.Location
	}

	c.JSON(http.StatusOK, tracking)
}

// GetMyApplications returns the applications to every listing of the logged in franchisee.
// @Summary List applications to my job listings
// @Tags Application
// @Produce json
// @Success 200 {array} model.ApplicationWithJob
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /my-applications [get]
func (ac *ApplicationController) GetMyApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	ctx := c.Request.Context()

	jobs, err := ac.Store.ListJobs(ctx, storage.JobFilter{UserID: user.ID})
	if err != nil {
		ac.internalError(c, "Failed to fetch job listings", err)
		return
	}

	byID := make(map[uint]model.JobListing, len(jobs))
	ids := make([]uint, 0, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
		ids = append(ids, job.ID)
	}

	apps, err := ac.Store.ListApplicationsByJobs(ctx, ids)
	if err != nil {
		ac.internalError(c, "Failed to fetch applications", err)
		return
	}

	resp := make([]model.ApplicationWithJob, 0, len(apps))
	for _, app := range apps {
		job := byID[app.JobID]
		resp = append(resp, model.ApplicationWithJob{
			Application: app,
			JobTitle:    job.Title,
			JobLocation: job.Location,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateApplicationStatus changes the status of an application to one of the franchisee's listings.
// @Summary Update application status
// @Description Any allowed status may follow any other
// @Tags Application
// @Accept json
// @Produce json
// @Param id path integer true "ID of the application"
// @Param status body statusUpdate true "submitted, under_review, interview, interviewed, accepted or rejected"
// @Success 200 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Invalid id or status"
// @Failure 401 {object} utilities.ErrorResponse "Not logged in"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of the job listing"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage error"
// @Router /applications/{id} [patch]
func (ac *ApplicationController) UpdateApplicationStatus(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := utilities.ParseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var body statusUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Status must be provided"})
		return
	}
	if !model.IsValidApplicationStatus(body.Status) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Unknown application status: " + body.Status,
		})
		return
	}

	ctx := c.Request.Context()

	app, err := ac.Store.GetApplication(ctx, id)
	if err != nil {
		ac.internalError(c, "Failed to retrieve application", err)
		return
	}
	if app == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
		return
	}

	job, err := ac.Store.GetJob(ctx, app.JobID)
	if err != nil {
		ac.internalError(c, "Failed to retrieve job listing", err)
		return
	}
	if job == nil || job.UserID != user.ID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to update this application",
		})
		return
	}

	previous := app.Status
	updated, err := ac.Store.UpdateApplicationStatus(ctx, app.ID, body.Status)
	if err != nil {
		ac.internalError(c, "Failed to update application", err)
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
		return
	}

	if ac.Audit != nil {
		ac.Audit.Record(ctx, user.ID, model.ActionUpdateApplicationStatus, model.EntityApplication, updated.ID, gin.H{
			"jobId":       job.ID,
			"referenceId": updated.ReferenceID,
			"from":        previous,
			"to":          updated.Status,
		})
	}
	ac.Notifier.StatusChanged(ctx, *updated, *job)

	c.JSON(http.StatusOK, updated)
}
