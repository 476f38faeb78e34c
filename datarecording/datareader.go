package datarecording

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/fatih/structs"
)

// A DataReader reads rows back out of a recorded run.
type DataReader struct {
	db *sql.DB
}

// NewSQLiteReader opens a recorded SQLite database for reading.
func NewSQLiteReader(path string) (*DataReader, error) {
	db, err := sql.Open("sqlite3", path+".sqlite3")
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}

	return &DataReader{db: db}, nil
}

// NewSQLiteReaderWithDB wraps an existing database connection.
func NewSQLiteReaderWithDB(db *sql.DB) *DataReader {
	return &DataReader{db: db}
}

// ReadAll reads every row of tableName into values shaped like sampleEntry
// and returns them in insertion order.
func (r *DataReader) ReadAll(
	tableName string,
	sampleEntry any,
) ([]any, error) {
	entryType := reflect.TypeOf(sampleEntry)
	columns := strings.Join(structs.Names(sampleEntry), ", ")

	rows, err := r.db.Query("SELECT " + columns + " FROM " + tableName)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		entry := reflect.New(entryType).Elem()

		targets := make([]any, entry.NumField())
		for i := range targets {
			targets[i] = entry.Field(i).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", tableName, err)
		}

		out = append(out, entry.Interface())
	}

	return out, rows.Err()
}

// Close releases the reader.
func (r *DataReader) Close() error {
	return r.db.Close()
}
