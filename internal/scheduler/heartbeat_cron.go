package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Habit_Tracker/internal/metrics"
	"github.com/Dias221467/Habit_Tracker/pkg/logger"
	"github.com/robfig/cron/v3"
)

const heartbeatTimeout = 5 * time.Second

// Pinger checks that the datastore is reachable.
type Pinger func(ctx context.Context) error

// RunHeartbeat pings the datastore once and records the outcome.
func RunHeartbeat(ctx context.Context, ping Pinger, m *metrics.Metrics) error {
	ctx, cancel := context.WithTimeout(ctx, heartbeatTimeout)
	defer cancel()

	err := ping(ctx)
	m.SetDatastoreUp(err == nil)
	if err != nil {
		logger.Log.WithError(err).Error("Datastore heartbeat failed")
		return err
	}
	return nil
}

// StartHeartbeatCron schedules RunHeartbeat. The returned cron must be
// stopped on shutdown.
func StartHeartbeatCron(schedule string, ping Pinger, m *metrics.Metrics) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		_ = RunHeartbeat(context.Background(), ping, m)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid heartbeat schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.Log.WithField("schedule", schedule).Info("Datastore heartbeat scheduled")
	return c, nil
}
