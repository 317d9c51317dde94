package history

import (
	"context"
	"time"

	"github.com/helioplan/helioplan/core/scheduler"
)

// Record captures one completed scheduling run for later inspection.
type Record struct {
	RunID       string           `json:"run_id"`
	MicrogridID string           `json:"microgrid_id"`
	CreatedAt   time.Time        `json:"created_at"`
	SlotMinutes int              `json:"slot_minutes"`
	Result      scheduler.Result `json:"result"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start       time.Time
	End         time.Time
	MicrogridID string
}

// Store persists run records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
