package oauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateAt(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      State
	}{
		{"well before margin", now.Add(2 * time.Hour), StateValid},
		{"just outside margin", now.Add(SafetyMargin + time.Second), StateValid},
		{"exactly on margin boundary", now.Add(SafetyMargin), StateExpiringSoon},
		{"inside margin", now.Add(time.Minute), StateExpiringSoon},
		{"exactly at expiry", now, StateExpired},
		{"past expiry", now.Add(-10 * time.Minute), StateExpired},
		{"long past expiry", now.Add(-24 * time.Hour), StateExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateAt(tt.expiresAt, now))
		})
	}
}

func TestStateIsPureInTime(t *testing.T) {
	expiresAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	// The same expiry classifies differently purely as a function of "now";
	// there is no hidden state to carry over.
	assert.Equal(t, StateValid, StateAt(expiresAt, expiresAt.Add(-time.Hour)))
	assert.Equal(t, StateExpiringSoon, StateAt(expiresAt, expiresAt.Add(-time.Minute)))
	assert.Equal(t, StateExpired, StateAt(expiresAt, expiresAt.Add(time.Minute)))
	assert.Equal(t, StateValid, StateAt(expiresAt, expiresAt.Add(-time.Hour)))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "valid", StateValid.String())
	assert.Equal(t, "expiring soon", StateExpiringSoon.String())
	assert.Equal(t, "expired", StateExpired.String())
}
