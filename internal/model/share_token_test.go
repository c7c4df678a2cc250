package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShareTokenIsValid(t *testing.T) {
	now := time.Now()
	maxOne := 1
	maxThree := 3

	base := func() ShareToken {
		return ShareToken{
			ExpiresAt:          now.Add(1 * time.Hour),
			IsRevoked:          false,
			MaxAccessCount:     nil,
			CurrentAccessCount: 0,
		}
	}

	t.Run("fresh token is valid", func(t *testing.T) {
		token := base()
		assert.True(t, token.IsValid(now))
	})

	t.Run("revoked token is invalid regardless of expiry and count", func(t *testing.T) {
		token := base()
		token.IsRevoked = true
		assert.False(t, token.IsValid(now))
	})

	t.Run("expired token is invalid", func(t *testing.T) {
		token := base()
		token.ExpiresAt = now.Add(-1 * time.Minute)
		assert.False(t, token.IsValid(now))
	})

	t.Run("valid exactly at expiry instant", func(t *testing.T) {
		token := base()
		token.ExpiresAt = now
		assert.True(t, token.IsValid(now))
	})

	t.Run("exhausted access count is invalid", func(t *testing.T) {
		token := base()
		token.MaxAccessCount = &maxOne
		token.CurrentAccessCount = 1
		assert.False(t, token.IsValid(now))
	})

	t.Run("remaining accesses keep token valid", func(t *testing.T) {
		token := base()
		token.MaxAccessCount = &maxThree
		token.CurrentAccessCount = 2
		assert.True(t, token.IsValid(now))
	})

	t.Run("nil max access count means unlimited", func(t *testing.T) {
		token := base()
		token.CurrentAccessCount = 1000
		assert.True(t, token.IsValid(now))
	})
}
