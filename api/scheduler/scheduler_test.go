package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/wepass-api/access"
	"github.com/linesmerrill/wepass-api/api/scheduler"
	mocksdb "github.com/linesmerrill/wepass-api/databases/mocks"
)

func TestScheduler_CheckCapacity(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := access.NewClockFunc(-6, func() time.Time { return now })

	tests := []struct {
		name   string
		active int64
		err    error
		want   float64
	}{
		{"below threshold", 1000, nil, 0.1},
		{"above threshold", 9000, nil, 0.9},
		{"count fails", 0, errors.New("mocked-error"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaseDB := &mocksdb.AccessCodeLeaseDatabase{}
			leaseDB.On("CountDocuments", mock.Anything, mock.Anything).Return(tt.active, tt.err)
			s := scheduler.NewScheduler(leaseDB, clock, "", 0.8)

			got := s.CheckCapacity(context.Background())

			assert.InDelta(t, tt.want, got, 0.0001)
			filter := leaseDB.Calls[0].Arguments.Get(1).(bson.M)
			assert.True(t, filter["expiresAt"].(bson.M)["$gt"].(time.Time).Equal(now))
		})
	}
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	s := scheduler.NewScheduler(&mocksdb.AccessCodeLeaseDatabase{}, access.NewClock(-6), "not a schedule", 0.8)

	require.Error(t, s.Start())
}

func TestScheduler_StartStop(t *testing.T) {
	s := scheduler.NewScheduler(&mocksdb.AccessCodeLeaseDatabase{}, access.NewClock(-6), scheduler.DefaultSchedule, 0.8)

	require.NoError(t, s.Start())
	s.Stop()
}
