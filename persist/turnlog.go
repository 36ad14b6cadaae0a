package persist

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KvFxKaido/SENTINEL-sub001/types"
)

// TurnLog is an append-only SQLite record of committed turn results, one row
// per (campaign, turn). It is an audit surface, not the world save.
type TurnLog struct {
	db *sql.DB
}

const turnLogSchema = `
CREATE TABLE IF NOT EXISTS turns (
	campaign_id TEXT NOT NULL,
	turn_number INTEGER NOT NULL,
	action_id   TEXT NOT NULL,
	success     INTEGER NOT NULL,
	recorded_at TEXT NOT NULL,
	result      TEXT NOT NULL,
	PRIMARY KEY (campaign_id, turn_number, action_id)
);`

// OpenTurnLog opens (creating if needed) a turn log database at path.
func OpenTurnLog(path string) (*TurnLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening turn log %s: %w", path, err)
	}
	if _, err := db.Exec(turnLogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing turn log schema: %w", err)
	}
	return &TurnLog{db: db}, nil
}

// Append records one committed turn result.
func (l *TurnLog) Append(campaign string, result *types.TurnResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("serializing turn result: %w", err)
	}
	success := 0
	if result.Success {
		success = 1
	}
	_, err = l.db.Exec(
		`INSERT INTO turns (campaign_id, turn_number, action_id, success, recorded_at, result)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		campaign, result.TurnNumber, result.ActionID, success,
		time.Now().UTC().Format(time.RFC3339), string(payload),
	)
	if err != nil {
		return fmt.Errorf("recording turn %d: %w", result.TurnNumber, err)
	}
	return nil
}

// Turns returns all recorded results for a campaign in turn order.
func (l *TurnLog) Turns(campaign string) ([]types.TurnResult, error) {
	rows, err := l.db.Query(
		`SELECT result FROM turns WHERE campaign_id = ? ORDER BY turn_number, recorded_at`,
		campaign,
	)
	if err != nil {
		return nil, fmt.Errorf("reading turn log: %w", err)
	}
	defer rows.Close()

	var results []types.TurnResult
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning turn row: %w", err)
		}
		var result types.TurnResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("decoding turn result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Close releases the underlying database.
func (l *TurnLog) Close() error {
	return l.db.Close()
}
