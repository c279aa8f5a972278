package snapshot

// TimestampFormat is the wall-clock format written to the CSV log.
const TimestampFormat = "2006-01-02 15:04:05"

// Snapshot is one fully merged record of all monitored metrics for one
// account at one point in time. It is built fresh each cycle and consumed
// exactly once by the CSV appender.
type Snapshot struct {
	Timestamp string
	Columns   []string
	Values    map[string]string
}

// Header returns the CSV header: timestamp followed by the configured
// columns in field order.
func (s Snapshot) Header() []string {
	header := make([]string, 0, len(s.Columns)+1)
	header = append(header, "timestamp")
	return append(header, s.Columns...)
}

// Row returns the data row aligned to Header. Columns whose fetch failed
// hold the empty string.
func (s Snapshot) Row() []string {
	row := make([]string, 0, len(s.Columns)+1)
	row = append(row, s.Timestamp)
	for _, col := range s.Columns {
		row = append(row, s.Values[col])
	}
	return row
}
