package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/wepass-api/access"
)

func TestClock_NowIsInCanonicalOffset(t *testing.T) {
	instant := time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC)
	c := access.NewClockFunc(-6, func() time.Time { return instant })

	now := c.Now()

	assert.True(t, now.Equal(instant))
	_, offset := now.Zone()
	assert.Equal(t, -6*3600, offset)
	assert.Equal(t, 9, now.Day())
	assert.Equal(t, 21, now.Hour())
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-06:00", -6*3600)
	instant := time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC)

	start := access.StartOfDay(instant, loc)

	assert.Equal(t, time.Date(2024, 1, 9, 0, 0, 0, 0, loc), start)
}
