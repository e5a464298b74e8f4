package dto

// CreateBookingRequest is the booking form a customer submits.
type CreateBookingRequest struct {
	CustomerID           string   `json:"customer_id" binding:"required"`
	FromLanguageID       string   `json:"from_language_id"`
	Immediate            string   `json:"immediate"`
	DueDate              string   `json:"due_date"`
	DueTime              string   `json:"due_time"`
	Duration             string   `json:"duration"`
	CustomerPhoneType    string   `json:"customer_phone_type"`
	CustomerPhysicalType string   `json:"customer_physical_type"`
	JobFor               []string `json:"job_for"`
}

// CreateBookingResponse returns the id of the created booking.
type CreateBookingResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// EndBookingRequest closes a session.
type EndBookingRequest struct {
	CompletedAt string `json:"completed_at" binding:"required"`
	UserID      string `json:"user_id" binding:"required"`
}

// NotCarriedOutRequest marks a customer no-show.
type NotCarriedOutRequest struct {
	CompletedAt string `json:"completed_at" binding:"required"`
}

// ReopenBookingRequest reopens a withdrawn or timed-out booking.
type ReopenBookingRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// DispatchBookingRequest requests a manual fan-out round.
type DispatchBookingRequest struct {
	ExcludeUserID string `json:"exclude_user_id"`
}

// ListBookingsRequest carries the admin listing filters.
type ListBookingsRequest struct {
	IDs          []string `form:"id"`
	Statuses     []string `form:"status"`
	Languages    []string `form:"lang"`
	JobTypes     []string `form:"job_type"`
	CustomerID   string   `form:"customer_id"`
	Flagged      bool     `form:"flagged"`
	Physical     string   `form:"physical"`
	Phone        string   `form:"phone"`
	ExpiredOnly  bool     `form:"expired_pending"`
	CreatedFrom  string   `form:"created_from"`
	CreatedTo    string   `form:"created_to"`
	DueFrom      string   `form:"due_from"`
	DueTo        string   `form:"due_to"`
	Role         string   `form:"role"`
	ConsumerType string   `form:"consumer_type"`
}

// ListBookingsResponse wraps the matched bookings.
type ListBookingsResponse struct {
	Bookings []BookingDTO `json:"bookings"`
	Count    int          `json:"count"`
}

// BookingDTO is the listing view of a booking.
type BookingDTO struct {
	JobID                string `json:"job_id"`
	CustomerID           string `json:"customer_id"`
	FromLanguageID       string `json:"from_language_id"`
	Immediate            string `json:"immediate"`
	Due                  string `json:"due"`
	Duration             int    `json:"duration"`
	Status               string `json:"status"`
	Gender               string `json:"gender,omitempty"`
	Certification        string `json:"certification,omitempty"`
	JobType              string `json:"job_type"`
	CustomerPhoneType    string `json:"customer_phone_type"`
	CustomerPhysicalType string `json:"customer_physical_type"`
	WillExpireAt         string `json:"will_expire_at"`
	SessionTime          int    `json:"session_time,omitempty"`
	Flagged              bool   `json:"flagged"`
	AdminComments        string `json:"admin_comments,omitempty"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}
