package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Registers the "sqlite" driver.

	"github.com/oshokin/lidar-alarm/internal/domain/alarm"
	"github.com/oshokin/lidar-alarm/internal/domain/sector"
)

// schemaSQL creates the transition table.
//
//go:embed schema.sql
var schemaSQL string

// Entry is one recorded transition.
type Entry struct {
	ID         uuid.UUID
	RecordedAt time.Time
	State      alarm.State
}

// Journal appends alarm transitions to SQLite.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Record stores state and returns the id of the new entry.
// NaN readings are stored as NULL.
func (j *Journal) Record(ctx context.Context, state *alarm.State) (uuid.UUID, error) {
	id := uuid.New()

	var triggeringSector, triggeringRange any
	if state.TriggeringSector != "" {
		triggeringSector = string(state.TriggeringSector)
		triggeringRange = nullable(state.TriggeringRange)
	}

	const query = `
		INSERT INTO alarm_transitions (
			id, sequence, recorded_at_ns, scan_at_ns, alarm_active,
			triggering_sector, triggering_range, forward_distance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.ExecContext(ctx, query,
		id.String(),
		int64(state.Sequence), //nolint:gosec // Sequences stay far below 2^63.
		j.now().UnixNano(),
		state.Timestamp.UnixNano(),
		state.Active,
		triggeringSector,
		triggeringRange,
		nullable(state.ForwardDistance),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("record transition: %w", err)
	}

	return id, nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const query = `
		SELECT id, sequence, recorded_at_ns, scan_at_ns, alarm_active,
			triggering_sector, triggering_range, forward_distance
		FROM alarm_transitions
		ORDER BY recorded_at_ns DESC, sequence DESC
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			id                          string
			sequence, recordedAt, scanT int64
			active                      bool
			sectorName                  sql.NullString
			triggeringRange, forward    sql.NullFloat64
		)

		if err = rows.Scan(&id, &sequence, &recordedAt, &scanT, &active, &sectorName, &triggeringRange, &forward); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}

		parsed, parseErr := uuid.Parse(id)
		if parseErr != nil {
			return nil, fmt.Errorf("parse transition id: %w", parseErr)
		}

		entries = append(entries, Entry{
			ID:         parsed,
			RecordedAt: time.Unix(0, recordedAt),
			State: alarm.State{
				Timestamp:        time.Unix(0, scanT),
				Sequence:         uint64(sequence), //nolint:gosec // Written from a uint64.
				Active:           active,
				ForwardDistance:  orNaN(forward),
				TriggeringSector: sector.Name(sectorName.String),
				TriggeringRange:  orZero(triggeringRange),
			},
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}

	return entries, nil
}

// Publish records state, letting the journal act as a monitor sink.
func (j *Journal) Publish(ctx context.Context, state *alarm.State) error {
	_, err := j.Record(ctx, state)

	return err
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}

	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}

	return v.Float64
}

func orZero(v sql.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}

	return v.Float64
}
