package sql

import (
	"context"
	dbsql "database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/w-h-a/agentmem/connection"
	"github.com/w-h-a/agentmem/memory"
)

type sqlMemory struct {
	options        memory.Options
	pruner         *memory.Pruner
	registry       *connection.Registry
	connectionName string
	table          string
	wrapper        *connection.Wrapper
	mtx            sync.Mutex
}

func (m *sqlMemory) Name() string {
	return m.options.Name
}

func (m *sqlMemory) Add(ctx context.Context, messages []memory.Message, opts ...memory.AddOption) error {
	if len(messages) == 0 {
		return nil
	}

	w, err := m.init(ctx)
	if err != nil {
		return err
	}

	options := memory.NewAddOptions(opts...)

	query := w.Rebind(fmt.Sprintf(`
		INSERT INTO %s (session_id, agent_id, source, message, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.table))

	return w.InTx(ctx, func(tx *dbsql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("memory: prepare insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()

		for _, msg := range messages {
			payload, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("memory: marshal message: %w", err)
			}

			if _, err := stmt.ExecContext(ctx, options.SessionId, options.AgentId, msg.Source, string(payload), now, now); err != nil {
				return fmt.Errorf("memory: insert message: %w", err)
			}
		}

		return nil
	})
}

// Get reads matching rows oldest first and prunes them, summarizing the
// dropped prefix when a summarizer is configured.
func (m *sqlMemory) Get(ctx context.Context, opts ...memory.GetOption) ([]memory.Message, error) {
	w, err := m.init(ctx)
	if err != nil {
		return nil, err
	}

	options := memory.NewGetOptions(opts...)

	where, args := conditions(map[string]string{
		"session_id": options.SessionId,
		"agent_id":   options.AgentId,
		"source":     options.Source,
	})

	query := w.Rebind(fmt.Sprintf(`SELECT message FROM %s%s ORDER BY created_at ASC, id ASC`, m.table, where))

	rows, err := w.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("memory: query messages: %w", err)
	}
	defer rows.Close()

	var messages []memory.Message

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("memory: scan message: %w", err)
		}

		var msg memory.Message
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			return nil, fmt.Errorf("memory: unmarshal message: %w", err)
		}

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory: iterate messages: %w", err)
	}

	if options.TopK > 0 && len(messages) > options.TopK {
		messages = messages[len(messages)-options.TopK:]
	}

	return m.Prune(ctx, messages)
}

func (m *sqlMemory) Prune(ctx context.Context, messages []memory.Message) ([]memory.Message, error) {
	if len(messages) == 0 {
		return []memory.Message{}, nil
	}
	return m.pruner.Summarize(ctx, messages), nil
}

// Delete removes rows matching every non-empty filter. With no filters it
// deletes every row in the table.
func (m *sqlMemory) Delete(ctx context.Context, opts ...memory.DeleteOption) error {
	w, err := m.init(ctx)
	if err != nil {
		return err
	}

	options := memory.NewDeleteOptions(opts...)

	where, args := conditions(map[string]string{
		"session_id": options.SessionId,
		"agent_id":   options.AgentId,
	})

	query := w.Rebind(fmt.Sprintf(`DELETE FROM %s%s`, m.table, where))

	return w.InTx(ctx, func(tx *dbsql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("memory: delete messages: %w", err)
		}
		return nil
	})
}

// init resolves the connection and creates the table on first use.
func (m *sqlMemory) init(ctx context.Context) (*connection.Wrapper, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.wrapper != nil {
		return m.wrapper, nil
	}

	w, err := m.registry.Get(ctx, m.connectionName)
	if err != nil {
		return nil, fmt.Errorf("%w: memory %q: %w", memory.ErrConfiguration, m.options.Name, err)
	}

	if err := createTable(ctx, w, m.table); err != nil {
		return nil, err
	}

	m.wrapper = w

	return w, nil
}

// conditions builds an AND clause over the non-empty filters in a fixed
// column order.
func conditions(filters map[string]string) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	for _, col := range []string{"session_id", "agent_id", "source"} {
		v, ok := filters[col]
		if !ok || len(v) == 0 {
			continue
		}
		clauses = append(clauses, col+" = ?")
		args = append(args, v)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// NewMemory builds a persisted memory. The connection is only opened on the
// first operation; a missing registry or connection name fails here.
func NewMemory(opts ...memory.Option) (memory.Memory, error) {
	options := memory.NewOptions(opts...)

	m := &sqlMemory{
		options: options,
		pruner:  memory.NewPruner(options),
		table:   defaultTable,
	}

	if reg, ok := RegistryFrom(options.Context); ok && reg != nil {
		m.registry = reg
	} else {
		return nil, fmt.Errorf("%w: memory %q requires a connection registry", memory.ErrConfiguration, options.Name)
	}

	if name, ok := ConnectionFrom(options.Context); ok && len(name) > 0 {
		m.connectionName = name
	} else {
		return nil, fmt.Errorf("%w: memory %q requires a connection name", memory.ErrConfiguration, options.Name)
	}

	if table, ok := TableFrom(options.Context); ok && len(table) > 0 {
		m.table = table
	}

	if !tableName.MatchString(m.table) {
		return nil, fmt.Errorf("%w: memory %q has invalid table name %q", memory.ErrConfiguration, options.Name, m.table)
	}

	return m, nil
}
