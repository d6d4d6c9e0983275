// Package export serializes the events collection to a downloadable
// spreadsheet (CSV) with a fixed column set.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/eventhubx/eventhubx/internal/record"
)

// eventColumns is the fixed export column set.
var eventColumns = []struct {
	Header string
	Value  func(record.Record) string
}{
	{"Event ID", strField("id")},
	{"Name", strField("title")},
	{"Community", strField("community")},
	{"Start Date", strField("start_date")},
	{"End Date", strField("end_date")},
	{"City", strField("city")},
	{"Country", strField("country")},
	{"Registrations", intField("registrations")},
	{"Leads", intField("leads")},
	{"Exhibitors", intField("exhibitors")},
	{"Members", intField("members")},
	{"Sessions", intField("sessions")},
}

func strField(key string) func(record.Record) string {
	return func(r record.Record) string { return r.Str(key, "") }
}

func intField(key string) func(record.Record) string {
	return func(r record.Record) string {
		return fmt.Sprintf("%d", r.Int(key, 0))
	}
}

// EventsCSV writes the fixed-column spreadsheet for the given events.
// Malformed (nil) entries are skipped; they carry nothing exportable.
func EventsCSV(w io.Writer, events []record.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(eventColumns))
	for i, col := range eventColumns {
		header[i] = col.Header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(eventColumns))
	for _, ev := range events {
		if ev == nil {
			continue
		}
		for i, col := range eventColumns {
			row[i] = col.Value(ev)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
