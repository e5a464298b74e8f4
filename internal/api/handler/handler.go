package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tolkbridge/booking-be/internal/booking"
	"github.com/tolkbridge/booking-be/internal/storage"
)

// LifecycleService is the slice of the booking lifecycle the handlers call.
type LifecycleService interface {
	Create(ctx context.Context, customer *booking.Customer, in booking.CreateBookingInput) (string, error)
	End(ctx context.Context, jobID string, completedAt time.Time, actingUserID string) error
	MarkNotCarriedOut(ctx context.Context, jobID string, completedAt time.Time) error
	Reopen(ctx context.Context, jobID, actingTranslatorID string) (string, error)
}

// BookingStore covers the direct reads and flag writes the handlers need.
type BookingStore interface {
	CustomerByID(ctx context.Context, customerID string) (*booking.Customer, error)
	JobByID(ctx context.Context, jobID string) (*booking.Job, error)
	ListJobs(ctx context.Context, preds ...storage.Predicate) ([]*booking.Job, error)
	SetIgnoreExpired(ctx context.Context, jobID string) error
	SetIgnoreExpiring(ctx context.Context, jobID string) error
}

// DispatchPublisher queues manual fan-out rounds for the dispatch worker.
type DispatchPublisher interface {
	PublishDispatch(ctx context.Context, jobID, excludeUserID string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Lifecycle LifecycleService
	Store     BookingStore
	Publisher DispatchPublisher
}

// BookingHandler handles booking-related HTTP requests
type BookingHandler struct {
	logger    *slog.Logger
	lifecycle LifecycleService
	store     BookingStore
	publisher DispatchPublisher
}

// NewBookingHandler creates a new BookingHandler instance
func NewBookingHandler(deps *Dependencies) *BookingHandler {
	return &BookingHandler{
		logger:    deps.Logger,
		lifecycle: deps.Lifecycle,
		store:     deps.Store,
		publisher: deps.Publisher,
	}
}

// respondError maps domain errors onto HTTP status codes.
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	var validationErr *booking.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.Is(err, booking.ErrPastDate), errors.Is(err, booking.ErrNotCustomer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrJobNotFound),
		errors.Is(err, booking.ErrCustomerNotFound),
		errors.Is(err, booking.ErrTranslatorNotFound),
		errors.Is(err, booking.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrProcessing):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Unhandled request error", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
