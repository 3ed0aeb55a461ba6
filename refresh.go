package onair

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const refreshTimeout = time.Minute

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// StartRefresh reloads all translations on a cron schedule such as
// "*/15 * * * *" or "@every 1h", warming the default locale each time.
// A run still in progress when the next one is due is skipped.
// The returned stop func waits for a running reload to finish.
func (r *Router) StartRefresh(spec string) (stop func(), err error) {
	log := cronLogger{log: r.log}
	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	if _, err := c.AddFunc(spec, r.refresh); err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}
	c.Start()

	r.log.Info("translation refresh scheduled", "schedule", spec)
	return func() { <-c.Stop().Done() }, nil
}

func (r *Router) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := r.ReloadAll(ctx, WithWarm(true)); err != nil {
		r.log.WarnContext(ctx, "scheduled translation refresh failed", "error", err)
		return
	}
	r.log.DebugContext(ctx, "scheduled translation refresh done")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
