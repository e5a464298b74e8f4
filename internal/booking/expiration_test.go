package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWillExpireAt(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want time.Time
	}{
		{
			name: "within 90 minutes returns due unchanged",
			due:  now.Add(45 * time.Minute),
			want: now.Add(45 * time.Minute),
		},
		{
			name: "within 24 hours returns createdAt plus 90 minutes",
			due:  now.Add(10 * time.Hour),
			want: now.Add(90 * time.Minute),
		},
		{
			name: "between 24 and 72 hours returns createdAt plus 16 hours",
			due:  now.Add(48 * time.Hour),
			want: now.Add(16 * time.Hour),
		},
		{
			name: "greater than 72 hours returns due minus 48 hours",
			due:  now.Add(100 * time.Hour),
			want: now.Add(100*time.Hour - 48*time.Hour),
		},
		{
			name: "exactly 90 minutes stays in the due branch",
			due:  now.Add(90 * time.Minute),
			want: now.Add(90 * time.Minute),
		},
		{
			name: "exactly 24 hours stays in the 90-minute branch",
			due:  now.Add(24 * time.Hour),
			want: now.Add(90 * time.Minute),
		},
		{
			name: "exactly 72 hours stays in the 16-hour branch",
			due:  now.Add(72 * time.Hour),
			want: now.Add(16 * time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WillExpireAt(tt.due, now)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestWillExpireAt_Deterministic(t *testing.T) {
	createdAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	due := createdAt.Add(30 * time.Hour)

	first := WillExpireAt(due, createdAt)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, WillExpireAt(due, createdAt))
	}
}
