package datarecording

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"

	"github.com/shardlab/prefixnet/stats"
)

// ClickHouseRecorder is a DataRecorder that streams tick records into a
// ClickHouse database. It is meant for long parameter sweeps where many
// runs are compared; local runs should use the SQLite recorder.
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	batchSize int

	ticks  []stats.TickRecord
	tables map[string]struct{}
}

// NewClickHouseRecorder connects to a ClickHouse server. It panics when the
// server cannot be reached, which surfaces misconfiguration before the
// simulation spends any time running.
func NewClickHouseRecorder(
	host string, port int,
	database, username, password string,
	batchSize int,
) DataRecorder {
	if batchSize == 0 {
		batchSize = 50000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout:     time.Second * 30,
		MaxOpenConns:    2,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		panic(fmt.Errorf("connecting to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("pinging ClickHouse: %w", err))
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		batchSize: batchSize,
		tables:    make(map[string]struct{}),
	}

	atexit.Register(func() { r.Flush() })

	return r
}

func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	if tableName != stats.TickTable {
		panic(fmt.Sprintf(
			"ClickHouse recorder only stores %s, got %s",
			stats.TickTable, tableName))
	}

	err := r.conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS `+stats.TickTable+` (
			Iteration   UInt64,
			Nodes       UInt64,
			Sections    UInt64,
			Merges      UInt64,
			Splits      UInt64,
			Relocations UInt64,
			Rejections  UInt64
		) ENGINE = MergeTree() ORDER BY Iteration`)
	if err != nil {
		panic(fmt.Errorf("creating table %s: %w", tableName, err))
	}

	r.tables[tableName] = struct{}{}
}

func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	if _, ok := r.tables[tableName]; !ok {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	rec, ok := entry.(stats.TickRecord)
	if !ok {
		panic(fmt.Sprintf("unexpected entry type %T", entry))
	}

	r.ticks = append(r.ticks, rec)
	if len(r.ticks) >= r.batchSize {
		r.Flush()
	}
}

func (r *ClickHouseRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

func (r *ClickHouseRecorder) Flush() {
	if len(r.ticks) == 0 {
		return
	}

	ctx := context.Background()
	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+stats.TickTable)
	if err != nil {
		panic(fmt.Errorf("preparing batch: %w", err))
	}

	for _, rec := range r.ticks {
		err := batch.Append(
			rec.Iteration, rec.Nodes, rec.Sections,
			rec.Merges, rec.Splits, rec.Relocations, rec.Rejections)
		if err != nil {
			panic(fmt.Errorf("appending tick record: %w", err))
		}
	}

	if err := batch.Send(); err != nil {
		panic(fmt.Errorf("sending batch: %w", err))
	}

	r.ticks = r.ticks[:0]
}

func (r *ClickHouseRecorder) Close() {
	r.Flush()

	if err := r.conn.Close(); err != nil {
		panic(err)
	}
}
