package booking

import "time"

// JobStatus is the lifecycle state of a booking.
type JobStatus string

const (
	StatusPending           JobStatus = "pending"
	StatusAssigned          JobStatus = "assigned"
	StatusStarted           JobStatus = "started"
	StatusCompleted         JobStatus = "completed"
	StatusWithdrawnBefore24 JobStatus = "withdrawn_before_24"
	StatusWithdrawnAfter24  JobStatus = "withdrawn_after_24"
	StatusTimedOut          JobStatus = "timed_out"
	StatusNotCarriedOut     JobStatus = "not_carried_out_by_customer"
)

// JobType classifies who pays for a booking.
type JobType string

const (
	JobTypePaid   JobType = "paid"
	JobTypeRWS    JobType = "rws"
	JobTypeUnpaid JobType = "unpaid"
)

// TranslatorType is the translator's engagement category. Each type maps to
// the job type that translator is allowed to take.
type TranslatorType string

const (
	TranslatorProfessional TranslatorType = "professional"
	TranslatorRWS          TranslatorType = "rwstranslator"
	TranslatorVolunteer    TranslatorType = "volunteer"
)

// JobTypeFor maps a translator type to the job type it may serve.
// Unknown types fall back to unpaid work.
func JobTypeFor(t TranslatorType) JobType {
	switch t {
	case TranslatorProfessional:
		return JobTypePaid
	case TranslatorRWS:
		return JobTypeRWS
	default:
		return JobTypeUnpaid
	}
}

// User type constants for the roles this service cares about.
const (
	UserTypeCustomer   = "customer"
	UserTypeTranslator = "translator"
)

// Job is a single interpretation/translation booking.
type Job struct {
	ID             string
	CustomerID     string
	FromLanguageID string

	// Immediate is "yes" for urgent bookings that start within minutes,
	// "no" for scheduled ones.
	Immediate string

	Due      time.Time
	Duration int // minutes

	Status        JobStatus
	Gender        Gender
	Certification Certification
	JobType       JobType

	// "yes"/"no"/"" flags describing how the session is held.
	CustomerPhoneType    string
	CustomerPhysicalType string

	WillExpireAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	EndAt        *time.Time
	SessionTime  int // minutes, set on completion

	// Administrative flags used by the listing filters.
	IgnoreExpiring bool
	IgnoreExpired  bool
	IgnoreFeedback bool
	Flagged        bool

	// Customer reminder flags, reset when a timed-out job is replicated.
	Reminder16HourSent bool
	Reminder48HourSent bool

	AdminComments string
}

// IsImmediate reports whether the booking is an urgent one.
func (j *Job) IsImmediate() bool { return j.Immediate == "yes" }

// PhoneAllowed reports whether the booking can be served over the phone.
func (j *Job) PhoneAllowed() bool { return j.CustomerPhoneType == "yes" }

// PhysicalRequired reports whether the booking requires physical presence.
func (j *Job) PhysicalRequired() bool { return j.CustomerPhysicalType == "yes" }

// Assignment links one translator to one job for a span of time. A job may
// accumulate several assignments over its history; at most one of them has
// neither cancel_at nor completed_at set, and that one is the active
// assignment.
type Assignment struct {
	ID           string
	JobID        string
	TranslatorID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	WillExpireAt time.Time
	CancelAt     *time.Time
	CompletedAt  *time.Time
	CompletedBy  string
}

// Active reports whether the assignment is the live one for its job.
func (a *Assignment) Active() bool { return a.CancelAt == nil && a.CompletedAt == nil }

// TranslatorProfile is the read-only view of a translator the dispatch
// engine needs. Owned by user management.
type TranslatorProfile struct {
	UserID          string
	TranslatorType  TranslatorType
	Languages       []string
	Gender          Gender
	TranslatorLevel string
	Town            string

	// Notification preferences.
	NotGetNotification bool
	NotGetEmergency    bool
	DelayPush          bool
}

// Customer is the read-only view of a booking's owner.
type Customer struct {
	ID           string
	UserType     string
	ConsumerType string
	CustomerType string
	Town         string
}
