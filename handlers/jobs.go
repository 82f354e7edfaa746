// jobs.go - Handles job creation and the public job listing

package handlers

import (
	"net/http"
	"strings"

	"go-jobmarket-backend/cache"
	"go-jobmarket-backend/events"
	"go-jobmarket-backend/models"

	"github.com/gin-gonic/gin"
)

type JobInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Skill       string  `json:"skill" binding:"required"`
	Budget      float64 `json:"budget" binding:"required,gt=0"`
}

// CreateJob posts a new OPEN job owned by the caller.
func (h *Handler) CreateJob(c *gin.Context) {
	claims := mustClaims(c)

	var input JobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "All fields are required")
		return
	}
	job := models.Job{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Skill:       strings.TrimSpace(input.Skill),
		Budget:      input.Budget,
		Status:      models.JobOpen,
		OwnerID:     claims.UserID,
	}
	if job.Title == "" || job.Description == "" || job.Skill == "" {
		badRequest(c, "All fields are required")
		return
	}

	ctx := c.Request.Context()
	if err := h.store.CreateJob(ctx, &job); err != nil {
		serverError(c, "Failed to create job", err)
		return
	}

	h.invalidateOpenJobs(c)
	h.events.Notify(ctx, events.JobCreated(&job))
	c.JSON(http.StatusCreated, job)
}

// ListJobs returns every OPEN job, newest first. Served from the cache when warm.
//
// The generation is read before the store query: if a job is created or closed
// meanwhile, the listing lands under a generation nobody reads any more.
func (h *Handler) ListJobs(c *gin.Context) {
	ctx := c.Request.Context()

	gen, err := h.cache.Generation(ctx, cache.OpenJobsKey)
	cacheable := err == nil // Cache errors are logged by the cache
	key := cache.VersionedKey(cache.OpenJobsKey, gen)

	var jobs []models.Job
	if cacheable {
		if hit, err := h.cache.GetJSON(ctx, key, &jobs); err == nil && hit {
			c.JSON(http.StatusOK, jobs)
			return
		}
	}

	jobs, err = h.store.ListOpenJobs(ctx)
	if err != nil {
		serverError(c, "Failed to fetch jobs", err)
		return
	}
	if cacheable {
		_ = h.cache.SetJSON(ctx, key, jobs)
	}
	c.JSON(http.StatusOK, jobs)
}

// invalidateOpenJobs runs after the store write has committed.
func (h *Handler) invalidateOpenJobs(c *gin.Context) {
	_ = h.cache.Invalidate(c.Request.Context(), cache.OpenJobsKey)
}
