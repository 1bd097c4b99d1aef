package logexport

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/logging"
)

var specParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSpec validates a cron expression. Seconds are optional and
// descriptors such as "@hourly" are accepted.
func ParseSpec(spec string) (cron.Schedule, error) {
	schedule, err := specParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}

// Scheduler runs an Exporter on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	exporter *Exporter
	logger   logging.Logger
	spec     string
	schedule cron.Schedule
	entry    cron.EntryID
}

// NewScheduler registers exporter under spec. Call Start to begin.
func NewScheduler(spec string, exporter *Exporter, logger logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	schedule, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	logger = logger.Named("log_export")
	c := cron.New(
		cron.WithParser(specParser),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
	)
	s := &Scheduler{cron: c, exporter: exporter, logger: logger, spec: spec, schedule: schedule}
	s.entry = c.Schedule(schedule, cron.FuncJob(s.run))
	return s, nil
}

// Spec returns the cron expression.
func (s *Scheduler) Spec() string { return s.spec }

// Start begins running exports in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduled log export started",
		zap.String("spec", s.spec),
		zap.Time("next_run", s.Next()),
	)
}

// Next returns the next scheduled run in UTC. Before Start it is computed
// from the exporter's clock.
func (s *Scheduler) Next() time.Time {
	if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
		return next.UTC()
	}
	return s.schedule.Next(s.exporter.clock.Now().UTC()).UTC()
}

// Stop stops scheduling and waits for a running export until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	if _, err := s.exporter.Export(context.Background()); err != nil {
		s.logger.Error("Scheduled log export failed", zap.Error(err))
	}
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(fields(keysAndValues), zap.Error(err))...)
}

func fields(keysAndValues []interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		out = append(out, zap.Any(key, keysAndValues[i+1]))
	}
	return out
}
