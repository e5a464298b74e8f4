package booking

import "errors"

var (
	// ErrJobNotFound is returned when the referenced booking does not exist.
	ErrJobNotFound = errors.New("job not found")

	// ErrAssignmentNotFound is returned when a job has no active
	// (uncancelled, uncompleted) assignment.
	ErrAssignmentNotFound = errors.New("active assignment not found")

	// ErrTranslatorNotFound is returned when a translator profile is absent.
	ErrTranslatorNotFound = errors.New("translator not found")

	// ErrCustomerNotFound is returned when a customer record is absent.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrPastDate is returned when the computed due date is not in the future.
	ErrPastDate = errors.New("can't create booking in the past")

	// ErrNotCustomer is returned when a non-customer tries to create a booking.
	ErrNotCustomer = errors.New("translator cannot create booking")

	// ErrProcessing is the uniform failure reported by operations that
	// deliberately hide their internal cause from the caller.
	ErrProcessing = errors.New("an error occurred while processing the request")
)

// ValidationError reports the first missing or invalid booking field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "you must fill in all fields: " + e.Field
}

// StorageError wraps a storage collaborator transport failure.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage error: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a storage transport failure.
func NewStorageError(err error) error {
	return &StorageError{Err: err}
}
