package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create events table
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS events(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		level TEXT,
		code TEXT,
		msg TEXT,
		meta TEXT
	)`); err != nil {
		db.Close()
		return nil, err
	}

	// Create runs table, one row per snapshot request
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts REAL,
		request_id TEXT,
		projection TEXT,
		output_path TEXT,
		status TEXT,
		rows_written INTEGER,
		rejections INTEGER,
		dur_ms REAL,
		error TEXT
	)`); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

func (db *DB) Event(level, code, msg string, meta map[string]interface{}) error {
	m := ""
	if meta != nil {
		b, _ := json.Marshal(meta)
		m = string(b)
	}
	_, err := db.Exec(`INSERT INTO events(ts,level,code,msg,meta) VALUES(?,?,?,?,?)`,
		float64(time.Now().UnixNano())/1e9, level, code, msg, m)
	return err
}

func (db *DB) Run(start time.Time, requestID, projection, outputPath, status string,
	rowsWritten, rejections int, dur time.Duration, errStr string) error {
	_, err := db.Exec(`INSERT INTO runs(
		ts, request_id, projection, output_path, status, rows_written, rejections, dur_ms, error)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		float64(start.UnixNano())/1e9, requestID, projection, outputPath, status, rowsWritten, rejections, float64(dur.Milliseconds()), errStr)
	return err
}
