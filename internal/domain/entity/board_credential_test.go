package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBoardCredential_ExpiringSoon(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	margin := 5 * time.Minute

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"already expired", now.Add(-time.Minute), true},
		{"expires exactly now", now, true},
		{"inside the margin", now.Add(2 * time.Minute), true},
		{"exactly at the margin boundary", now.Add(margin), true},
		{"one nanosecond past the boundary", now.Add(margin + time.Nanosecond), false},
		{"comfortably valid", now.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := &BoardCredential{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, cred.ExpiringSoon(now, margin))
		})
	}
}

func TestBoardCredential_ExpiringSoon_ZeroMargin(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	live := &BoardCredential{ExpiresAt: now.Add(time.Nanosecond)}
	assert.False(t, live.ExpiringSoon(now, 0))

	expired := &BoardCredential{ExpiresAt: now}
	assert.True(t, expired.ExpiringSoon(now, 0))
}
