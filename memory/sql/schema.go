package sql

import (
	"context"
	"fmt"
	"regexp"

	"github.com/w-h-a/agentmem/connection"
)

const defaultTable = "memory"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

func createTableStatements(dialect connection.Dialect, table string) []string {
	var create string

	switch dialect {
	case connection.Postgres:
		create = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				session_id VARCHAR(100) NOT NULL DEFAULT '',
				agent_id VARCHAR(100) NOT NULL DEFAULT '',
				source VARCHAR(500) NOT NULL DEFAULT '',
				message TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				modified_at TIMESTAMPTZ NOT NULL
			)`, table)
	default:
		create = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id VARCHAR(100) NOT NULL DEFAULT '',
				agent_id VARCHAR(100) NOT NULL DEFAULT '',
				source VARCHAR(500) NOT NULL DEFAULT '',
				message TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				modified_at TIMESTAMP NOT NULL
			)`, table)
	}

	return []string{
		create,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_ix_session_id ON %s (session_id)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_ix_agent_id_source ON %s (agent_id, source)`, table, table),
	}
}

func createTable(ctx context.Context, w *connection.Wrapper, table string) error {
	for _, stmt := range createTableStatements(w.Dialect(), table) {
		if _, err := w.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("memory: create table %s: %w", table, err)
		}
	}
	return nil
}
