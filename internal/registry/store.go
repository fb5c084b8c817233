package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/kkk9131/new-gate-sub000/pkg/models"
)

// ExtensionStore is the sqlite-backed ExtensionSource. One row per installed
// extension; tool definitions are stored as the wire-stable json array.
type ExtensionStore struct {
	DB *sql.DB
}

func NewExtensionStore(dbPath string) (*ExtensionStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open extension store: %w", err)
	}

	query := `CREATE TABLE IF NOT EXISTS extensions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		app_id TEXT NOT NULL,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		tools_json TEXT NOT NULL,
		installed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("init extension store: %w", err)
	}

	return &ExtensionStore{DB: db}, nil
}

// Install registers (or replaces) one extension's tools for a user and app.
func (s *ExtensionStore) Install(ctx context.Context, userID, appID, name string, tools []models.ToolDefinition) error {
	b, err := json.Marshal(tools)
	if err != nil {
		return fmt.Errorf("encode tools: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM extensions WHERE user_id = ? AND app_id = ?`, userID, appID); err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO extensions (user_id, app_id, name, active, tools_json) VALUES (?, ?, ?, 1, ?)`,
		userID, appID, name, string(b))
	return err
}

// Deactivate keeps the row but removes it from lookups.
func (s *ExtensionStore) Deactivate(ctx context.Context, userID, appID string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE extensions SET active = 0 WHERE user_id = ? AND app_id = ?`, userID, appID)
	return err
}

// Lookup implements ExtensionSource.
func (s *ExtensionStore) Lookup(ctx context.Context, userID, appID string) ([]models.ToolDefinition, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT tools_json FROM extensions WHERE user_id = ? AND app_id = ? AND active = 1 LIMIT 1`,
		userID, appID)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query extensions: %w", err)
	}

	var tools []models.ToolDefinition
	if err := json.Unmarshal([]byte(raw), &tools); err != nil {
		return nil, fmt.Errorf("decode extension tools: %w", err)
	}
	return tools, nil
}

func (s *ExtensionStore) Close() error {
	return s.DB.Close()
}
