// Package server wires the gin routes to their handlers and owns the HTTP server lifecycle.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jogatev/chebeneleven-sub000/internal/audit"
	"github.com/Jogatev/chebeneleven-sub000/internal/auth"
	"github.com/Jogatev/chebeneleven-sub000/internal/controller/activity"
	"github.com/Jogatev/chebeneleven-sub000/internal/controller/application"
	"github.com/Jogatev/chebeneleven-sub000/internal/controller/file"
	"github.com/Jogatev/chebeneleven-sub000/internal/controller/job"
	"github.com/Jogatev/chebeneleven-sub000/internal/middleware"
	"github.com/Jogatev/chebeneleven-sub000/internal/notify"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.Log), middleware.Metrics(), middleware.SafeHeader())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.Config.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // session cookie
	}))

	recorder := audit.NewRecorder(s.Store, s.Log)
	notifier := notify.NewNotifier(s.Mailer, s.Log)

	lAuth := auth.NewLocalAuthHandler(s.Store, s.Sessions, recorder, s.Log)
	jobController := job.NewJobController(s.Store, recorder, s.Log)
	appController := application.NewApplicationController(s.Store, recorder, notifier, s.Log)
	activityController := activity.NewActivityController(s.Store, s.Log)
	fileController := file.NewFileController(s.Uploads, s.Log)

	requireAuth := middleware.RequireAuth(s.Sessions, s.Store, s.Log)
	rateLimit := middleware.RateLimiterMiddleware(uint(s.Config.RateLimitPerSecond))

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/uploads/*filepath", fileController.ServeUpload)

	api := r.Group("/api")
	{
		api.POST("register", rateLimit, lAuth.LocalRegisterHandler)
		api.POST("login", rateLimit, lAuth.LocalLoginHandler)
		api.POST("logout", lAuth.LogoutHandler)

		api.GET("jobs", jobController.GetJobs)
		api.GET("jobs/:id", jobController.GetJobByID)

		api.POST("applications", rateLimit, appController.SubmitApplication)
		api.GET("applications/track/:referenceId", appController.TrackApplication)

		api.POST("upload-resume", rateLimit, middleware.SizeLimit(s.Config.Upload.MaxBytes), fileController.UploadResume)

		needAuth := api.Group("")
		{
			needAuth.Use(requireAuth)
			needAuth.GET("user", lAuth.CurrentUserHandler)

			needAuth.POST("jobs", jobController.CreateJob)
			needAuth.PATCH("jobs/:id", jobController.UpdateJob)
			needAuth.DELETE("jobs/:id", jobController.DeleteJob)
			needAuth.GET("jobs/:id/applications", jobController.GetJobApplications)
			needAuth.GET("my-jobs", jobController.GetMyJobs)

			needAuth.GET("my-applications", appController.GetMyApplications)
			needAuth.PATCH("applications/:id", appController.UpdateApplicationStatus)

			needAuth.GET("my-activities", activityController.GetMyActivities)
		}
	}

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *Server) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *Server) healthHandler(c *gin.Context) {
	health := s.Store.Health()
	status := http.StatusOK
	if health["status"] == "down" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
