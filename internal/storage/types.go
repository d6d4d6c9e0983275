package storage

import (
	"time"

	"github.com/eventhubx/eventhubx/internal/record"
)

// EventRow is one mirrored event with its payload.
type EventRow struct {
	EventID     string
	Data        record.Record
	RecordCount int64
	UpdatedAt   time.Time
}

// SubpageRow is the mirrored per-event payload for one entity type.
type SubpageRow struct {
	EventID     string
	EntityType  record.EntityType
	Data        []record.Record
	RecordCount int64
	UpdatedAt   time.Time
}

// Stats holds aggregate statistics about the mirror database.
type Stats struct {
	Events      int64
	SubpageRows int64
	Records     int64
	LastUpdated time.Time
	PerType     []TypeCount
}

// TypeCount pairs an entity type with its row and record counts.
type TypeCount struct {
	EntityType string
	Rows       int64
	Records    int64
}
