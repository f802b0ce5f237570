package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Jogatev/chebeneleven-sub000/internal/model"
)

var usernameSeq atomic.Int64

func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, usernameSeq.Add(1))
}

func seedUser(t *testing.T, s Storage) *model.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), model.User{
		Username:       uniqueUsername("franchisee"),
		Password:       "hash.salt",
		FranchiseeName: "Downtown Store",
		FranchiseeID:   "F-100",
		Location:       "Dallas, TX",
	})
	require.NoError(t, err)
	return user
}

func seedJob(t *testing.T, s Storage, userID uint, title string) *model.JobListing {
	t.Helper()
	job, err := s.CreateJob(context.Background(), model.JobListing{
		UserID: userID,
		EditableJobInfo: model.EditableJobInfo{
			Title:       title,
			Location:    "Dallas, TX",
			Description: "Serve customers",
			Type:        "part-time",
			Department:  "Store",
			Tags:        pq.StringArray{"retail", "nights"},
		},
	})
	require.NoError(t, err)
	return job
}

func newApplication(jobID uint) model.Application {
	return model.Application{ApplicantInfo: model.ApplicantInfo{
		JobID:        jobID,
		FirstName:    "Ana",
		LastName:     "Lopez",
		Email:        "ana@example.com",
		Phone:        "555-0100",
		Availability: pq.StringArray{"morning", "weekend"},
	}}
}

// runStorageContract checks the behaviour every Storage implementation must share.
func runStorageContract(t *testing.T, s Storage) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		user := seedUser(t, s)
		assert.NotZero(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		got, err := s.GetUser(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.Username, got.Username)

		byName, err := s.GetUserByUsername(ctx, user.Username)
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, user.ID, byName.ID)

		_, err = s.CreateUser(ctx, model.User{Username: user.Username, Password: "x.y"})
		assert.ErrorIs(t, err, ErrDuplicateUsername)

		missing, err := s.GetUser(ctx, 999999)
		assert.NoError(t, err)
		assert.Nil(t, missing)

		missing, err = s.GetUserByUsername(ctx, "nobody-here")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("create then get job", func(t *testing.T) {
		user := seedUser(t, s)
		job := seedJob(t, s, user.ID, "Crew Member")

		got, err := s.GetJob(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.NotZero(t, got.ID)
		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, model.JobStatusActive, got.Status)
		assert.Equal(t, pq.StringArray{"retail", "nights"}, got.Tags)

		missing, err := s.GetJob(ctx, 999999)
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("list jobs with filter", func(t *testing.T) {
		user := seedUser(t, s)
		other := seedUser(t, s)
		first := seedJob(t, s, user.ID, "Morning Baker")
		second := seedJob(t, s, user.ID, "Night Stocker")
		seedJob(t, s, other.ID, "Morning Cashier")

		closed := model.JobStatusClosed
		_, err := s.UpdateJob(ctx, second.ID, model.JobUpdate{Status: &closed})
		require.NoError(t, err)

		mine, err := s.ListJobs(ctx, JobFilter{UserID: user.ID})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, second.ID, mine[0].ID, "newest first")
		assert.Equal(t, first.ID, mine[1].ID)

		active, err := s.ListJobs(ctx, JobFilter{UserID: user.ID, Status: model.JobStatusActive})
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, first.ID, active[0].ID)

		search, err := s.ListJobs(ctx, JobFilter{UserID: user.ID, Search: "BAKER"})
		require.NoError(t, err)
		require.Len(t, search, 1)
		assert.Equal(t, "Morning Baker", search[0].Title)

		none, err := s.ListJobs(ctx, JobFilter{UserID: user.ID, Department: "warehouse"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update job", func(t *testing.T) {
		user := seedUser(t, s)
		job := seedJob(t, s, user.ID, "Driver")

		title := "Delivery Driver"
		updated, err := s.UpdateJob(ctx, job.ID, model.JobUpdate{Title: &title, Tags: []string{"car"}})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Delivery Driver", updated.Title)
		assert.Equal(t, "Dallas, TX", updated.Location)
		assert.Equal(t, pq.StringArray{"car"}, updated.Tags)

		missing, err := s.UpdateJob(ctx, 999999, model.JobUpdate{Title: &title})
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("application for unknown job", func(t *testing.T) {
		_, err := s.CreateApplication(ctx, newApplication(987654))
		assert.ErrorIs(t, err, ErrUnknownJob)
	})

	t.Run("delete job removes applications", func(t *testing.T) {
		user := seedUser(t, s)
		job := seedJob(t, s, user.ID, "Temp")
		app, err := s.CreateApplication(ctx, newApplication(job.ID))
		require.NoError(t, err)

		ok, err := s.DeleteJob(ctx, job.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		gone, err := s.GetJob(ctx, job.ID)
		assert.NoError(t, err)
		assert.Nil(t, gone)

		goneApp, err := s.GetApplication(ctx, app.ID)
		assert.NoError(t, err)
		assert.Nil(t, goneApp)

		ok, err = s.DeleteJob(ctx, job.ID)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("applications", func(t *testing.T) {
		user := seedUser(t, s)
		job := seedJob(t, s, user.ID, "Barista")
		otherJob := seedJob(t, s, user.ID, "Host")

		app, err := s.CreateApplication(ctx, newApplication(job.ID))
		require.NoError(t, err)
		assert.NotZero(t, app.ID)
		assert.Regexp(t, regexp.MustCompile(`^SEV-\d{4}-[A-Z0-9]{5}$`), app.ReferenceID)
		assert.Equal(t, model.ApplicationStatusSubmitted, app.Status)
		assert.False(t, app.CreatedAt.IsZero())

		second, err := s.CreateApplication(ctx, newApplication(otherJob.ID))
		require.NoError(t, err)

		byRef, err := s.GetApplicationByReference(ctx, app.ReferenceID)
		require.NoError(t, err)
		require.NotNil(t, byRef)
		assert.Equal(t, app.ID, byRef.ID)
		assert.Equal(t, pq.StringArray{"morning", "weekend"}, byRef.Availability)

		listed, err := s.ListApplicationsByJobs(ctx, []uint{job.ID, otherJob.ID})
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, second.ID, listed[0].ID, "newest first")

		empty, err := s.ListApplicationsByJobs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)

		updated, err := s.UpdateApplicationStatus(ctx, app.ID, model.ApplicationStatusInterview)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, model.ApplicationStatusInterview, updated.Status)
		assert.Equal(t, app.ReferenceID, updated.ReferenceID)

		// any allowed status may follow any other
		back, err := s.UpdateApplicationStatus(ctx, app.ID, model.ApplicationStatusSubmitted)
		require.NoError(t, err)
		require.NotNil(t, back)
		assert.Equal(t, model.ApplicationStatusSubmitted, back.Status)

		missing, err := s.UpdateApplicationStatus(ctx, 999999, model.ApplicationStatusRejected)
		assert.NoError(t, err)
		assert.Nil(t, missing)

		missingRef, err := s.GetApplicationByReference(ctx, "SEV-0000-XXXXX")
		assert.NoError(t, err)
		assert.Nil(t, missingRef)
	})

	t.Run("activities", func(t *testing.T) {
		user := seedUser(t, s)
		for i := 0; i < 3; i++ {
			details, _ := json.Marshal(map[string]int{"n": i})
			a, err := s.CreateActivity(ctx, model.Activity{
				UserID:     user.ID,
				Action:     model.ActionCreateJob,
				EntityType: model.EntityJob,
				EntityID:   uint(i + 1),
				Details:    datatypes.JSON(details),
			})
			require.NoError(t, err)
			assert.False(t, a.Timestamp.IsZero())
		}

		recent, err := s.ListActivitiesByUser(ctx, user.ID, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, uint(3), recent[0].EntityID)
		assert.JSONEq(t, `{"n":2}`, string(recent[0].Details))

		all, err := s.ListActivitiesByUser(ctx, user.ID, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
