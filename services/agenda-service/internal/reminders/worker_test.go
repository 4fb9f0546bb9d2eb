package reminders

import (
	"testing"
	"time"
)

func TestNextAttempt(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	backoff := time.Minute

	attempts, nextRunAt, dead := nextAttempt(Job{Attempts: 0, MaxAttempts: 5}, backoff, now)
	if attempts != 1 || dead {
		t.Fatalf("first failure: attempts=%d dead=%v, want 1 false", attempts, dead)
	}
	if !nextRunAt.Equal(now.Add(backoff)) {
		t.Fatalf("nextRunAt = %v, want %v", nextRunAt, now.Add(backoff))
	}

	// The attempt that reaches the cap is the one that goes to the DLQ.
	if _, _, dead := nextAttempt(Job{Attempts: 3, MaxAttempts: 5}, backoff, now); dead {
		t.Fatal("attempt 4 of 5 should still retry")
	}
	if attempts, _, dead := nextAttempt(Job{Attempts: 4, MaxAttempts: 5}, backoff, now); !dead || attempts != 5 {
		t.Fatalf("attempt 5 of 5: attempts=%d dead=%v, want 5 true", attempts, dead)
	}
}
