// applications.go - Handles applying to jobs and reviewing applications

package handlers

import (
	"errors"
	"io"
	"net/http"

	"go-jobmarket-backend/events"
	"go-jobmarket-backend/models"
	"go-jobmarket-backend/store"

	"github.com/gin-gonic/gin"
)

type ApplyInput struct {
	Answers       models.Answers `json:"answers"`       // Free-form, stored verbatim
	PortfolioLink string         `json:"portfolioLink"` // Optional
}

type StatusInput struct {
	Status string `json:"status" binding:"required"`
}

// Apply records the caller's application to an OPEN job.
func (h *Handler) Apply(c *gin.Context) {
	claims := mustClaims(c)

	// STEP 1: Validate path and body
	jobID, ok := pathID(c, "jobId")
	if !ok {
		badRequest(c, "Invalid job id")
		return
	}
	var input ApplyInput
	if c.Request.ContentLength != 0 { // Empty body is allowed
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "Invalid request body")
			return
		}
	}

	// STEP 2: Job must exist and accept applications
	ctx := c.Request.Context()
	job, err := h.store.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Job not found")
			return
		}
		serverError(c, "Failed to apply", err)
		return
	}
	if job.Status != models.JobOpen {
		badRequest(c, "Job is not accepting applications")
		return
	}

	// STEP 3: One application per (job, worker)
	applied, err := h.store.HasApplied(ctx, jobID, claims.UserID)
	if err != nil {
		serverError(c, "Failed to apply", err)
		return
	}
	if applied {
		badRequest(c, "Already applied")
		return
	}

	// STEP 4: Save
	app := models.Application{
		JobID:         jobID,
		UserID:        claims.UserID,
		Answers:       input.Answers,
		PortfolioLink: input.PortfolioLink,
	}
	if err := h.store.CreateApplication(ctx, &app); err != nil {
		if errors.Is(err, store.ErrDuplicate) { // Concurrent apply won the unique index
			badRequest(c, "Already applied")
			return
		}
		serverError(c, "Failed to apply", err)
		return
	}

	h.events.Notify(ctx, events.ApplicationCreated(&app, job.OwnerID))
	c.JSON(http.StatusCreated, app)
}

// ListApplications returns the applications to one of the caller's jobs.
func (h *Handler) ListApplications(c *gin.Context) {
	claims := mustClaims(c)

	jobID, ok := pathID(c, "jobId")
	if !ok {
		badRequest(c, "Invalid job id")
		return
	}

	ctx := c.Request.Context()
	job, err := h.store.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Job not found")
			return
		}
		serverError(c, "Failed to fetch applications", err)
		return
	}
	if job.OwnerID != claims.UserID {
		forbidden(c)
		return
	}

	apps, err := h.store.ListApplications(ctx, jobID)
	if err != nil {
		serverError(c, "Failed to fetch applications", err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// UpdateApplicationStatus moves an application to SELECTED, REJECTED or COMPLETED.
func (h *Handler) UpdateApplicationStatus(c *gin.Context) {
	claims := mustClaims(c)

	// STEP 1: Validate id and target status before touching the store
	appID, ok := pathID(c, "applicationId")
	if !ok {
		badRequest(c, "Invalid application id")
		return
	}
	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid status")
		return
	}
	status, ok := models.ParseStatusUpdate(input.Status)
	if !ok {
		badRequest(c, "Invalid status")
		return
	}

	// STEP 2: Only the owner of the job may decide
	ctx := c.Request.Context()
	app, err := h.store.FindApplication(ctx, appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Application not found")
			return
		}
		serverError(c, "Failed to update application", err)
		return
	}
	job, err := h.store.FindJob(ctx, app.JobID)
	if err != nil {
		serverError(c, "Failed to update application", err)
		return
	}
	if job.OwnerID != claims.UserID {
		forbidden(c)
		return
	}

	// STEP 3: Update (COMPLETED closes the job in the same transaction)
	updated, jobClosed, err := h.store.UpdateApplicationStatus(ctx, appID, status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "Application not found")
			return
		}
		serverError(c, "Failed to update application", err)
		return
	}
	if jobClosed {
		h.invalidateOpenJobs(c)
	}

	h.events.Notify(ctx, events.ApplicationStatusUpdated(updated))
	c.JSON(http.StatusOK, updated)
}
