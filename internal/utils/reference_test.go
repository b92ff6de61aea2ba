package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingReference(t *testing.T) {
	now := time.Date(2026, 6, 1, 15, 4, 5, 0, time.UTC)

	ref, err := NewBookingReference(now)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^FEST260601150405[A-Z0-9]{6}$`), ref)
	assert.Len(t, ref, 4+12+6)
}

func TestNewBookingReference_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		ref, err := NewBookingReference(now)
		require.NoError(t, err)
		if _, dup := seen[ref]; dup {
			t.Fatalf("duplicate reference generated: %s", ref)
		}
		seen[ref] = struct{}{}
	}
}
