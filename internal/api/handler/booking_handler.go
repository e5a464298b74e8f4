package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tolkbridge/booking-be/internal/api/dto"
	"github.com/tolkbridge/booking-be/internal/booking"
	"github.com/tolkbridge/booking-be/internal/storage"
)

const (
	timestampLayout = time.RFC3339
	dateOnlyLayout  = "2006-01-02"
)

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	customer, err := h.store.CustomerByID(c.Request.Context(), req.CustomerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	jobID, err := h.lifecycle.Create(c.Request.Context(), customer, booking.CreateBookingInput{
		FromLanguageID:       req.FromLanguageID,
		Immediate:            req.Immediate,
		DueDate:              req.DueDate,
		DueTime:              req.DueTime,
		Duration:             req.Duration,
		CustomerPhoneType:    req.CustomerPhoneType,
		CustomerPhysicalType: req.CustomerPhysicalType,
		JobFor:               req.JobFor,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateBookingResponse{
		JobID:  jobID,
		Status: string(booking.StatusPending),
	})
}

// GetBooking handles GET /api/v1/bookings/:job_id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.store.JobByID(c.Request.Context(), jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingDTO(job))
}

// ListBookings handles GET /api/v1/bookings
// Admin listing with filter predicates. Superadmins see every job type;
// other admins are pinned to their consumer type's job type.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	var req dto.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	preds, err := buildPredicates(&req, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobs, err := h.store.ListJobs(c.Request.Context(), preds...)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := dto.ListBookingsResponse{
		Bookings: make([]dto.BookingDTO, len(jobs)),
		Count:    len(jobs),
	}
	for i, job := range jobs {
		resp.Bookings[i] = toBookingDTO(job)
	}

	c.JSON(http.StatusOK, resp)
}

// EndBooking handles POST /api/v1/bookings/:job_id/end
func (h *BookingHandler) EndBooking(c *gin.Context) {
	jobID := c.Param("job_id")

	var req dto.EndBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	completedAt, err := time.Parse(timestampLayout, req.CompletedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "completed_at must be RFC3339"})
		return
	}

	if err := h.lifecycle.End(c.Request.Context(), jobID, completedAt, req.UserID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "status": string(booking.StatusCompleted)})
}

// NotCarriedOut handles POST /api/v1/bookings/:job_id/not-carried-out
func (h *BookingHandler) NotCarriedOut(c *gin.Context) {
	jobID := c.Param("job_id")

	var req dto.NotCarriedOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	completedAt, err := time.Parse(timestampLayout, req.CompletedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "completed_at must be RFC3339"})
		return
	}

	if err := h.lifecycle.MarkNotCarriedOut(c.Request.Context(), jobID, completedAt); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "status": string(booking.StatusNotCarriedOut)})
}

// ReopenBooking handles POST /api/v1/bookings/:job_id/reopen
func (h *BookingHandler) ReopenBooking(c *gin.Context) {
	jobID := c.Param("job_id")

	var req dto.ReopenBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	newJobID, err := h.lifecycle.Reopen(c.Request.Context(), jobID, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": newJobID, "status": string(booking.StatusPending)})
}

// DispatchBooking handles POST /api/v1/bookings/:job_id/dispatch
// Queues a manual fan-out round; the dispatch worker does the actual work.
func (h *BookingHandler) DispatchBooking(c *gin.Context) {
	jobID := c.Param("job_id")

	var req dto.DispatchBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if _, err := h.store.JobByID(c.Request.Context(), jobID); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.publisher.PublishDispatch(c.Request.Context(), jobID, req.ExcludeUserID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": "queued"})
}

// IgnoreExpired handles POST /api/v1/bookings/:job_id/ignore-expired
func (h *BookingHandler) IgnoreExpired(c *gin.Context) {
	jobID := c.Param("job_id")

	if err := h.store.SetIgnoreExpired(c.Request.Context(), jobID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "ignore_expired": true})
}

// IgnoreExpiring handles POST /api/v1/bookings/:job_id/ignore-expiring
func (h *BookingHandler) IgnoreExpiring(c *gin.Context) {
	jobID := c.Param("job_id")

	if err := h.store.SetIgnoreExpiring(c.Request.Context(), jobID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "ignore_expiring": true})
}

// buildPredicates folds the listing filters into storage predicates.
func buildPredicates(req *dto.ListBookingsRequest, now time.Time) ([]storage.Predicate, error) {
	var preds []storage.Predicate

	if req.ExpiredOnly {
		preds = append(preds, storage.WithExpiredPending(now))
	}

	if len(req.IDs) > 0 {
		preds = append(preds, storage.WithIDs(req.IDs...))
	}

	if len(req.Statuses) > 0 {
		statuses := make([]booking.JobStatus, len(req.Statuses))
		for i, s := range req.Statuses {
			statuses[i] = booking.JobStatus(s)
		}
		preds = append(preds, storage.WithStatuses(statuses...))
	}

	if len(req.Languages) > 0 {
		preds = append(preds, storage.WithLanguages(req.Languages...))
	}

	if req.Role == "superadmin" {
		if len(req.JobTypes) > 0 {
			types := make([]booking.JobType, len(req.JobTypes))
			for i, t := range req.JobTypes {
				types[i] = booking.JobType(t)
			}
			preds = append(preds, storage.WithJobTypes(types...))
		}
	} else {
		preds = append(preds, storage.WithJobTypes(booking.JobTypeForConsumer(req.ConsumerType)))
	}

	if req.CustomerID != "" {
		preds = append(preds, storage.WithCustomer(req.CustomerID))
	}

	if req.Flagged {
		preds = append(preds, storage.WithFlagged())
	}

	if req.Physical != "" {
		preds = append(preds, storage.WithPhysical(req.Physical))
	}

	if req.Phone != "" {
		preds = append(preds, storage.WithPhone(req.Phone))
	}

	if req.CreatedFrom != "" || req.CreatedTo != "" {
		from, to, err := parseWindow(req.CreatedFrom, req.CreatedTo)
		if err != nil {
			return nil, err
		}
		preds = append(preds, storage.WithCreatedBetween(from, to))
	}

	if req.DueFrom != "" || req.DueTo != "" {
		from, to, err := parseWindow(req.DueFrom, req.DueTo)
		if err != nil {
			return nil, err
		}
		preds = append(preds, storage.WithDueBetween(from, to))
	}

	return preds, nil
}

// parseWindow turns a pair of date-only bounds into an inclusive window.
// The upper bound covers the whole named day.
func parseWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if fromStr != "" {
		from, err = time.Parse(dateOnlyLayout, fromStr)
		if err != nil {
			return from, to, &booking.ValidationError{Field: "from"}
		}
	}

	if toStr != "" {
		to, err = time.Parse(dateOnlyLayout, toStr)
		if err != nil {
			return from, to, &booking.ValidationError{Field: "to"}
		}
		to = to.Add(24*time.Hour - time.Second)
	}

	return from, to, nil
}

func toBookingDTO(job *booking.Job) dto.BookingDTO {
	return dto.BookingDTO{
		JobID:                job.ID,
		CustomerID:           job.CustomerID,
		FromLanguageID:       job.FromLanguageID,
		Immediate:            job.Immediate,
		Due:                  job.Due.Format(timestampLayout),
		Duration:             job.Duration,
		Status:               string(job.Status),
		Gender:               string(job.Gender),
		Certification:        string(job.Certification),
		JobType:              string(job.JobType),
		CustomerPhoneType:    job.CustomerPhoneType,
		CustomerPhysicalType: job.CustomerPhysicalType,
		WillExpireAt:         job.WillExpireAt.Format(timestampLayout),
		SessionTime:          job.SessionTime,
		Flagged:              job.Flagged,
		AdminComments:        job.AdminComments,
		CreatedAt:            job.CreatedAt.Format(timestampLayout),
		UpdatedAt:            job.UpdatedAt.Format(timestampLayout),
	}
}
