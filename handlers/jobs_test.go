// jobs_test.go - Tests for job creation and the public listing

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"go-jobmarket-backend/cache"
	"go-jobmarket-backend/events"
	"go-jobmarket-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJob(title string) JobInput {
	return JobInput{Title: title, Description: "Fix the sink", Skill: "plumbing", Budget: 120}
}

// TestSignupLoginCreateJob walks the whole owner flow over HTTP
func TestSignupLoginCreateJob(t *testing.T) {
	env := setupRouter(t)

	// STEP 1: Signup as OWNER
	w := env.do(http.MethodPost, "/auth/signup", "", gin.H{
		"name": "Olga", "email": "olga@example.com", "password": "pw", "role": "OWNER",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var owner models.User
	decode(t, w, &owner)

	// STEP 2: Login
	w = env.do(http.MethodPost, "/auth/login", "", LoginInput{Email: "olga@example.com", Password: "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct{ Token string }
	decode(t, w, &login)

	// STEP 3: Create a job
	w = env.do(http.MethodPost, "/jobs", login.Token, validJob("Sink"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var job models.Job
	decode(t, w, &job)
	assert.NotZero(t, job.ID)
	assert.Equal(t, models.JobOpen, job.Status)
	assert.Equal(t, owner.ID, job.OwnerID)
	assert.Equal(t, 120.0, job.Budget)

	// STEP 4: Side effects
	created := env.events.ofType(events.TypeJobCreated)
	require.Len(t, created, 1)
	assert.Empty(t, created[0].Recipients)
	assert.Equal(t, 1, env.cache.invalidations)
}

func TestCreateJobRequiresOwner(t *testing.T) {
	env := setupRouter(t)
	_, workerToken := env.user(t, "wanda", models.RoleWorker)

	w := env.do(http.MethodPost, "/jobs", workerToken, validJob("Nope"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", errorOf(t, w))

	w = env.do(http.MethodPost, "/jobs", "", validJob("Nope"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token missing", errorOf(t, w))

	w = env.do(http.MethodPost, "/jobs", "not-a-token", validJob("Nope"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", errorOf(t, w))

	jobs, err := env.store.ListOpenJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCreateJobValidation(t *testing.T) {
	env := setupRouter(t)
	_, ownerToken := env.user(t, "otto", models.RoleOwner)

	cases := map[string]gin.H{
		"missing budget":  {"title": "T", "description": "D", "skill": "S"},
		"zero budget":     {"title": "T", "description": "D", "skill": "S", "budget": 0},
		"negative budget": {"title": "T", "description": "D", "skill": "S", "budget": -5},
		"blank title":     {"title": " ", "description": "D", "skill": "S", "budget": 5},
		"missing skill":   {"title": "T", "description": "D", "budget": 5},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/jobs", ownerToken, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "All fields are required", errorOf(t, w))
		})
	}
}

func TestListJobsOnlyOpenNewestFirst(t *testing.T) {
	env := setupRouter(t)
	_, ownerToken := env.user(t, "olive", models.RoleOwner)

	var ids []uint
	for _, title := range []string{"first", "second", "third"} {
		w := env.do(http.MethodPost, "/jobs", ownerToken, validJob(title))
		require.Equal(t, http.StatusCreated, w.Code)
		var j models.Job
		decode(t, w, &j)
		ids = append(ids, j.ID)
	}
	require.NoError(t, env.store.DB().Model(&models.Job{}).
		Where("id = ?", ids[1]).Update("status", models.JobClosed).Error)

	w := env.do(http.MethodGet, "/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []models.Job
	decode(t, w, &jobs)
	require.Len(t, jobs, 2)
	assert.Equal(t, ids[2], jobs[0].ID)
	assert.Equal(t, ids[0], jobs[1].ID)
	for _, j := range jobs {
		assert.Equal(t, models.JobOpen, j.Status)
	}
	assert.True(t, env.cache.cached(cache.OpenJobsKey))

	// a new job invalidates the cached listing
	w = env.do(http.MethodPost, "/jobs", ownerToken, validJob("fourth"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, env.cache.cached(cache.OpenJobsKey))

	w = env.do(http.MethodGet, "/jobs", "", nil)
	decode(t, w, &jobs)
	assert.Len(t, jobs, 3)
}

func TestListJobsServedFromCache(t *testing.T) {
	env := setupRouter(t)
	require.NoError(t, env.cache.SetJSON(context.Background(), cache.VersionedKey(cache.OpenJobsKey, 0),
		[]models.Job{{ID: 42, Title: "cached", Status: models.JobOpen}}))

	w := env.do(http.MethodGet, "/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []models.Job
	decode(t, w, &jobs)
	require.Len(t, jobs, 1)
	assert.Equal(t, uint(42), jobs[0].ID)
}

func TestListJobsEmpty(t *testing.T) {
	env := setupRouter(t)
	w := env.do(http.MethodGet, "/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

// A listing loaded before a job closes must not be cached past the close.
func TestListJobsIgnoresListingLoadedBeforeClose(t *testing.T) {
	env := setupRouter(t)
	owner, ownerToken := env.user(t, "odile", models.RoleOwner)
	_, workerToken := env.user(t, "wolf", models.RoleWorker)
	job := env.seedJob(t, owner)

	w := env.do(http.MethodPost, applyPath(job.ID), workerToken, gin.H{})
	require.Equal(t, http.StatusCreated, w.Code)
	var app models.Application
	decode(t, w, &app)

	// STEP 1: The job is completed between the store read and the cache write
	env.cache.beforeSet = func() {
		w := env.do(http.MethodPatch, fmt.Sprintf("/applications/%d", app.ID), ownerToken, gin.H{"status": "COMPLETED"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = env.do(http.MethodGet, "/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []models.Job
	decode(t, w, &jobs)
	assert.Len(t, jobs, 1) // loaded while still OPEN

	closed, err := env.store.FindJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobClosed, closed.Status)

	// STEP 2: The next read must not see the closed job
	w = env.do(http.MethodGet, "/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

// A job created while a listing is in flight shows up on the next read.
func TestListJobsIgnoresListingLoadedBeforeCreate(t *testing.T) {
	env := setupRouter(t)
	_, ownerToken := env.user(t, "orson", models.RoleOwner)

	env.cache.beforeSet = func() {
		w := env.do(http.MethodPost, "/jobs", ownerToken, validJob("late"))
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := env.do(http.MethodGet, "/jobs", "", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(http.MethodGet, "/jobs", "", nil)
	var jobs []models.Job
	decode(t, w, &jobs)
	require.Len(t, jobs, 1)
	assert.Equal(t, "late", jobs[0].Title)
}
