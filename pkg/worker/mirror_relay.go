// Package worker runs background jobs on a cron schedule.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Relayer delivers pending outbox events to the mirror.
type Relayer interface {
	RelayPending(ctx context.Context) (int, error)
}

// RelayJob runs one relay batch bounded by timeout.
func RelayJob(relay Relayer, timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := relay.RelayPending(ctx)
		if err != nil {
			logrus.WithError(err).WithField("relayed", n).Error("mirror relay failed")
			return
		}
		if n > 0 {
			logrus.WithField("relayed", n).Info("mirror events relayed")
		}
	}
}

// NewScheduler returns a cron that skips overlapping runs and recovers panics.
func NewScheduler() *cron.Cron {
	logger := cron.PrintfLogger(logrus.StandardLogger())
	return cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
}

// ScheduleMirrorRelay registers the relay on schedule, e.g. "@every 5s".
func ScheduleMirrorRelay(c *cron.Cron, schedule string, relay Relayer, timeout time.Duration) (cron.EntryID, error) {
	return c.AddFunc(schedule, RelayJob(relay, timeout))
}
