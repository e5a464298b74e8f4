package booking

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLifecycle(store *mockStore, pub *mockPublisher) *Lifecycle {
	l := NewLifecycle(store, pub, testLogger())
	l.now = func() time.Time { return testNow }
	return l
}

func testCustomer() *Customer {
	return &Customer{
		ID:           "cust-1",
		UserType:     UserTypeCustomer,
		ConsumerType: "rwsconsumer",
		Town:         "Stockholm",
	}
}

func validScheduledInput() CreateBookingInput {
	return CreateBookingInput{
		FromLanguageID:    "lang-sv",
		Immediate:         "no",
		DueDate:           "03/20/2024",
		DueTime:           "14:30",
		Duration:          "60",
		CustomerPhoneType: "yes",
		JobFor:            []string{"male", "certified"},
	}
}

func TestLifecycle_Create_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateBookingInput)
		wantField string
	}{
		{
			name:      "missing language",
			mutate:    func(in *CreateBookingInput) { in.FromLanguageID = "" },
			wantField: "from_language_id",
		},
		{
			name:      "scheduled booking without due date",
			mutate:    func(in *CreateBookingInput) { in.DueDate = "" },
			wantField: "due_date",
		},
		{
			name:      "scheduled booking without due time",
			mutate:    func(in *CreateBookingInput) { in.DueTime = "" },
			wantField: "due_date",
		},
		{
			name:      "scheduled booking without duration",
			mutate:    func(in *CreateBookingInput) { in.Duration = "" },
			wantField: "due_date",
		},
		{
			name: "immediate booking without duration",
			mutate: func(in *CreateBookingInput) {
				in.Immediate = "yes"
				in.Duration = ""
			},
			wantField: "duration",
		},
		{
			name: "neither phone nor physical",
			mutate: func(in *CreateBookingInput) {
				in.CustomerPhoneType = ""
				in.CustomerPhysicalType = ""
			},
			wantField: "customer_phone_type",
		},
		{
			name:      "non-numeric duration",
			mutate:    func(in *CreateBookingInput) { in.Duration = "soon" },
			wantField: "duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			l := newTestLifecycle(store, &mockPublisher{})

			in := validScheduledInput()
			tt.mutate(&in)

			_, err := l.Create(context.Background(), testCustomer(), in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Empty(t, store.jobs, "no row may be created on validation failure")
		})
	}
}

func TestLifecycle_Create_TranslatorRejected(t *testing.T) {
	l := newTestLifecycle(newMockStore(), &mockPublisher{})

	_, err := l.Create(context.Background(), &Customer{ID: "t-1", UserType: UserTypeTranslator}, validScheduledInput())
	assert.ErrorIs(t, err, ErrNotCustomer)
}

func TestLifecycle_Create_PastDue(t *testing.T) {
	store := newMockStore()
	l := newTestLifecycle(store, &mockPublisher{})

	in := validScheduledInput()
	in.DueDate = "03/14/2024" // the day before testNow

	_, err := l.Create(context.Background(), testCustomer(), in)
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Empty(t, store.jobs, "no row may be created for a past due date")
}

func TestLifecycle_Create_Immediate(t *testing.T) {
	store := newMockStore()
	pub := &mockPublisher{}
	l := newTestLifecycle(store, pub)

	in := CreateBookingInput{
		FromLanguageID:       "lang-sv",
		Immediate:            "yes",
		Duration:             "30",
		CustomerPhysicalType: "yes",
	}

	jobID, err := l.Create(context.Background(), testCustomer(), in)
	require.NoError(t, err)

	job := store.jobs[jobID]
	require.NotNil(t, job)
	assert.Equal(t, StatusPending, job.Status)
	assert.True(t, job.Due.Equal(testNow.Add(5*time.Minute)))
	// 5 minutes out lands in the shortest tier: deadline is the due time.
	assert.True(t, job.WillExpireAt.Equal(job.Due))
	assert.Equal(t, "no", job.CustomerPhoneType, "unset phone flag defaults to no")
	assert.Equal(t, "yes", job.CustomerPhysicalType)
	assert.Equal(t, []string{jobID}, pub.created)
}

func TestLifecycle_Create_DerivedFields(t *testing.T) {
	store := newMockStore()
	l := newTestLifecycle(store, &mockPublisher{})

	jobID, err := l.Create(context.Background(), testCustomer(), validScheduledInput())
	require.NoError(t, err)

	job := store.jobs[jobID]
	require.NotNil(t, job)
	assert.Equal(t, GenderMale, job.Gender)
	assert.Equal(t, CertCertified, job.Certification)
	assert.Equal(t, JobTypeRWS, job.JobType, "rwsconsumer maps to rws jobs")
	assert.True(t, job.Due.Equal(time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)))
	// Due is more than 72h out: deadline is due minus 48h.
	assert.True(t, job.WillExpireAt.Equal(job.Due.Add(-48*time.Hour)))
}

func TestLifecycle_Create_NonRWSConsumer(t *testing.T) {
	store := newMockStore()
	l := newTestLifecycle(store, &mockPublisher{})

	customer := testCustomer()
	customer.ConsumerType = "paid"

	jobID, err := l.Create(context.Background(), customer, validScheduledInput())
	require.NoError(t, err)
	assert.Equal(t, JobTypeUnpaid, store.jobs[jobID].JobType)
}

func TestLifecycle_End(t *testing.T) {
	due := testNow

	tests := []struct {
		name         string
		completedAt  time.Time
		actingUserID string
		wantSession  int
		wantEvent    bool
		wantUser     string
	}{
		{
			name:         "completed after due by customer",
			completedAt:  due.Add(50 * time.Minute),
			actingUserID: "cust-1",
			wantSession:  50,
			wantEvent:    true,
			wantUser:     "cust-1",
		},
		{
			name:         "completed after due by translator",
			completedAt:  due.Add(90 * time.Minute),
			actingUserID: "trans-1",
			wantSession:  90,
			wantEvent:    true,
			wantUser:     "trans-1",
		},
		{
			name:         "completed before due keeps negative session time",
			completedAt:  due.Add(-20 * time.Minute),
			actingUserID: "cust-1",
			wantSession:  -20,
			wantEvent:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			pub := &mockPublisher{}
			l := newTestLifecycle(store, pub)

			store.jobs["job-1"] = &Job{ID: "job-1", CustomerID: "cust-1", Due: due, Status: StatusStarted}
			store.assignments = append(store.assignments, &Assignment{
				ID: "a-1", JobID: "job-1", TranslatorID: "trans-1",
			})

			err := l.End(context.Background(), "job-1", tt.completedAt, tt.actingUserID)
			require.NoError(t, err)

			job := store.jobs["job-1"]
			assert.Equal(t, StatusCompleted, job.Status)
			assert.Equal(t, tt.wantSession, job.SessionTime)
			require.NotNil(t, job.EndAt)
			assert.True(t, job.EndAt.Equal(tt.completedAt))

			if tt.wantEvent {
				require.Len(t, pub.sessionEnded, 1)
				assert.Equal(t, tt.wantUser, pub.sessionEnded[0].ResponsibleUserID)
				assert.Equal(t, tt.wantSession, pub.sessionEnded[0].SessionTime)
			} else {
				assert.Empty(t, pub.sessionEnded)
			}
		})
	}
}

func TestLifecycle_End_JobNotFound(t *testing.T) {
	l := newTestLifecycle(newMockStore(), &mockPublisher{})

	err := l.End(context.Background(), "missing", testNow, "cust-1")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestLifecycle_MarkNotCarriedOut(t *testing.T) {
	store := newMockStore()
	l := newTestLifecycle(store, &mockPublisher{})

	store.jobs["job-1"] = &Job{ID: "job-1", CustomerID: "cust-1", Due: testNow, Status: StatusStarted}
	store.assignments = append(store.assignments, &Assignment{
		ID: "a-1", JobID: "job-1", TranslatorID: "trans-1",
	})

	completedAt := testNow.Add(10 * time.Minute)
	require.NoError(t, l.MarkNotCarriedOut(context.Background(), "job-1", completedAt))

	job := store.jobs["job-1"]
	assert.Equal(t, StatusNotCarriedOut, job.Status)
	require.NotNil(t, job.EndAt)
	assert.True(t, job.EndAt.Equal(completedAt))

	a := store.assignmentsFor("job-1")[0]
	require.NotNil(t, a.CompletedAt)
	assert.True(t, a.CompletedAt.Equal(completedAt))
	assert.Equal(t, "trans-1", a.CompletedBy, "assignment is closed in the translator's name")
}

func TestLifecycle_MarkNotCarriedOut_GenericFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mockStore)
	}{
		{
			name:  "job missing",
			setup: func(*mockStore) {},
		},
		{
			name: "no active assignment",
			setup: func(store *mockStore) {
				store.jobs["job-1"] = &Job{ID: "job-1", Status: StatusStarted}
			},
		},
		{
			name: "storage failure",
			setup: func(store *mockStore) {
				store.jobByIDErr = NewStorageError(assert.AnError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			tt.setup(store)
			l := newTestLifecycle(store, &mockPublisher{})

			err := l.MarkNotCarriedOut(context.Background(), "job-1", testNow)
			assert.ErrorIs(t, err, ErrProcessing, "all causes surface as the uniform processing error")
		})
	}
}

func TestLifecycle_Reopen_InPlace(t *testing.T) {
	store := newMockStore()
	pub := &mockPublisher{}
	l := newTestLifecycle(store, pub)

	due := testNow.Add(10 * time.Hour)
	store.jobs["job-1"] = &Job{
		ID: "job-1", CustomerID: "cust-1", Due: due,
		Status:    StatusWithdrawnBefore24,
		CreatedAt: testNow.Add(-2 * time.Hour),
	}
	cancelled := testNow.Add(-time.Hour)
	store.assignments = append(store.assignments,
		&Assignment{ID: "a-1", JobID: "job-1", TranslatorID: "trans-1"},
		&Assignment{ID: "a-2", JobID: "job-1", TranslatorID: "trans-2", CancelAt: &cancelled},
	)

	newID, err := l.Reopen(context.Background(), "job-1", "trans-9")
	require.NoError(t, err)
	assert.Equal(t, "job-1", newID, "non-timed-out jobs are reset in place")

	job := store.jobs["job-1"]
	assert.Equal(t, StatusPending, job.Status)
	assert.True(t, job.CreatedAt.Equal(testNow))
	// 10h to due from the reopen instant: the 90-minute tier applies.
	assert.True(t, job.WillExpireAt.Equal(testNow.Add(90*time.Minute)))

	assignments := store.assignmentsFor("job-1")
	require.Len(t, assignments, 3)
	require.NotNil(t, assignments[0].CancelAt)
	assert.True(t, assignments[0].CancelAt.Equal(testNow), "previously-uncancelled assignment is cancelled at reopen time")
	assert.True(t, assignments[1].CancelAt.Equal(cancelled), "already-cancelled assignment keeps its timestamp")

	fresh := assignments[2]
	assert.Equal(t, "trans-9", fresh.TranslatorID)
	require.NotNil(t, fresh.CancelAt)
	assert.True(t, fresh.CancelAt.Equal(testNow), "the fresh assignment is recorded already cancelled")

	assert.Equal(t, []string{"job-1"}, pub.reopened)
}

func TestLifecycle_Reopen_TimedOutReplicates(t *testing.T) {
	store := newMockStore()
	pub := &mockPublisher{}
	l := newTestLifecycle(store, pub)

	due := testNow.Add(100 * time.Hour)
	store.jobs["job-1"] = &Job{
		ID: "job-1", CustomerID: "cust-1", Due: due,
		Status:             StatusTimedOut,
		Gender:             GenderFemale,
		Certification:      CertLaw,
		Reminder16HourSent: true,
		Reminder48HourSent: true,
	}
	store.assignments = append(store.assignments,
		&Assignment{ID: "a-1", JobID: "job-1", TranslatorID: "trans-1"},
	)

	newID, err := l.Reopen(context.Background(), "job-1", "trans-9")
	require.NoError(t, err)
	require.NotEqual(t, "job-1", newID, "timed-out jobs are replicated under a new identity")

	original := store.jobs["job-1"]
	assert.Equal(t, StatusTimedOut, original.Status, "the original row keeps its prior status")

	replica := store.jobs[newID]
	require.NotNil(t, replica)
	assert.Equal(t, StatusPending, replica.Status)
	assert.Equal(t, GenderFemale, replica.Gender)
	assert.Equal(t, CertLaw, replica.Certification)
	assert.False(t, replica.Reminder16HourSent)
	assert.False(t, replica.Reminder48HourSent)
	assert.Equal(t, "This booking is a reopening of booking #job-1", replica.AdminComments)
	assert.True(t, replica.WillExpireAt.Equal(due.Add(-48*time.Hour)))

	// Assignments on the original are cancelled; the fresh one sits on the
	// replica and is itself already cancelled.
	origAssignments := store.assignmentsFor("job-1")
	require.Len(t, origAssignments, 1)
	require.NotNil(t, origAssignments[0].CancelAt)

	freshAssignments := store.assignmentsFor(newID)
	require.Len(t, freshAssignments, 1)
	assert.Equal(t, "trans-9", freshAssignments[0].TranslatorID)
	require.NotNil(t, freshAssignments[0].CancelAt)

	assert.Equal(t, []string{newID}, pub.reopened)
}

func TestLifecycle_Reopen_JobNotFound(t *testing.T) {
	l := newTestLifecycle(newMockStore(), &mockPublisher{})

	_, err := l.Reopen(context.Background(), "missing", "trans-1")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
