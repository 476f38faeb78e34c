// Package stats collects the per-tick measurements of a simulation run and
// provides small value types for summarizing distributions scanned from the
// partition map.
package stats

// A TickRecord is the durable measurement of one converged tick.
type TickRecord struct {
	Iteration   uint64
	Nodes       uint64
	Sections    uint64
	Merges      uint64
	Splits      uint64
	Relocations uint64
	Rejections  uint64
}

// A Recorder receives tick records as they are produced. It is satisfied by
// datarecording.DataRecorder.
type Recorder interface {
	CreateTable(tableName string, sampleEntry any)
	InsertData(tableName string, entry any)
}

// TickTable is the name of the table tick records are streamed into.
const TickTable = "tick_stats"

// Stats is the sink the network reports to once per tick.
type Stats struct {
	records  []TickRecord
	recorder Recorder
}

// NewStats creates an in-memory statistics sink.
func NewStats() *Stats {
	return &Stats{}
}

// StreamTo additionally streams every future record into rec.
func (s *Stats) StreamTo(rec Recorder) {
	rec.CreateTable(TickTable, TickRecord{})
	s.recorder = rec
}

// Record appends the measurement of one converged tick.
func (s *Stats) Record(
	iteration, nodes, sections,
	merges, splits, relocations, rejections uint64,
) {
	r := TickRecord{
		Iteration:   iteration,
		Nodes:       nodes,
		Sections:    sections,
		Merges:      merges,
		Splits:      splits,
		Relocations: relocations,
		Rejections:  rejections,
	}

	s.records = append(s.records, r)

	if s.recorder != nil {
		s.recorder.InsertData(TickTable, r)
	}
}

// Records returns all recorded ticks, oldest first. Callers must treat the
// returned slice as read-only.
func (s *Stats) Records() []TickRecord {
	return s.records
}

// Last returns the most recent record.
func (s *Stats) Last() (TickRecord, bool) {
	if len(s.records) == 0 {
		return TickRecord{}, false
	}

	return s.records[len(s.records)-1], true
}
