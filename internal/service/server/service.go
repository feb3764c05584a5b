package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/oshokin/lidar-alarm/internal/config"
	"github.com/oshokin/lidar-alarm/internal/logger"
	"github.com/oshokin/lidar-alarm/internal/repository/journal"
	repository "github.com/oshokin/lidar-alarm/internal/repository/state"
	"github.com/oshokin/lidar-alarm/internal/service/monitor"
)

// service bundles the monitor with the sinks and stores it publishes to.
type service struct {
	// monitor evaluates frames and owns the published alarm state.
	monitor *monitor.Monitor
	// hub fans published states out to WatchAlarmState streams.
	hub *monitor.Hub
	// repo keeps the snapshot of the last alarm transition.
	repo repository.Repository
	// journal records transitions when a journal file is configured.
	journal *journal.Journal
}

// newService builds the monitor for settings and wires its sinks.
// stateFile and journalFile are already resolved against CLI overrides.
func newService(ctx context.Context, settings *config.Config, stateFile, journalFile string) (*service, error) {
	table, err := settings.Table()
	if err != nil {
		return nil, fmt.Errorf("build sector table: %w", err)
	}

	policy, err := settings.Policy()
	if err != nil {
		return nil, err
	}

	repo := repository.NewFileRepository(stateFile)
	logPreviousSnapshot(ctx, repo)

	svc := &service{
		hub:  monitor.NewHub(),
		repo: repo,
	}

	opts := []monitor.Option{
		monitor.WithPolicy(policy),
		monitor.WithSink(svc.hub),
		monitor.WithSink(monitor.Transitions(monitor.SinkFunc(repo.Save))),
	}

	if journalFile != "" {
		svc.journal, err = journal.Open(ctx, journalFile)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}

		opts = append(opts, monitor.WithSink(monitor.Transitions(svc.journal)))
	}

	svc.monitor = monitor.New(table, opts...)

	return svc, nil
}

// close releases the stores held by the service.
func (s *service) close() error {
	var err error

	if s.journal != nil {
		err = multierr.Append(err, s.journal.Close())
	}

	return err
}

// logPreviousSnapshot reports the alarm state recorded by the previous run.
// The snapshot is informational and never seeds the live state.
func logPreviousSnapshot(ctx context.Context, repo repository.Repository) {
	previous, err := repo.Load(ctx)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Info(ctx, "No previous alarm snapshot")
	case err != nil:
		logger.WarnKV(ctx, "Previous alarm snapshot unreadable", "error", err)
	default:
		logger.InfoKV(ctx, "Previous alarm snapshot",
			"timestamp", previous.Timestamp,
			"alarm", previous.Active,
			"sector", string(previous.TriggeringSector),
			"forward_distance", previous.ForwardDistance)
	}
}
