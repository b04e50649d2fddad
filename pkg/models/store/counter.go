package store

import "time"

// CounterRow is one raw per-event counter sample as it comes out of the
// warehouse. Value stays a string until aggregation; some exporters write
// markers like "NIL" into numeric columns.
type CounterRow struct {
	Timestamp time.Time
	Peg       string
	Value     string
	NE        string
	CellID    string
	Host      string
}

// RowFilters narrows a counter fetch. Empty fields match everything.
type RowFilters struct {
	NE      string
	CellID  string
	Host    string
	Pegs    []string
}
