package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/database"
	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// SQLiteRepository stores audit entries in the gateway_logs table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates an audit repository on db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append inserts e and sets its sequential ID.
func (r *SQLiteRepository) Append(ctx context.Context, e *Entry) error {
	fillDefaults(e)

	details, err := marshalDetails(e.Details)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO gateway_logs (gateway_id, action, details, created_at)
		 VALUES (?, ?, ?, ?)`,
		e.GatewayID, string(e.Action), details, database.FormatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting gateway log: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading gateway log id: %w", err)
	}
	e.ID = id
	return nil
}

// ListByGateway returns one page of the gateway's entries, newest first.
func (r *SQLiteRepository) ListByGateway(ctx context.Context, gatewayID string, q pagination.Query) (*ListResult, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM gateway_logs WHERE gateway_id = ?", gatewayID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting gateway logs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, gateway_id, action, details, created_at
		 FROM gateway_logs
		 WHERE gateway_id = ?
		 ORDER BY id DESC
		 LIMIT ? OFFSET ?`,
		gatewayID, q.Limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying gateway logs: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var action, createdAt string
		var details sql.NullString

		if err := rows.Scan(&e.ID, &e.GatewayID, &action, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning gateway log: %w", err)
		}
		e.Action = Action(action)

		if details.Valid {
			if e.Details, err = unmarshalDetails([]byte(details.String)); err != nil {
				return nil, err
			}
		}
		if e.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gateway logs: %w", err)
	}

	return &ListResult{Entries: entries, Total: total}, nil
}

func marshalDetails(d Details) (any, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshalling gateway log details: %w", err)
	}
	return string(b), nil
}

func unmarshalDetails(b []byte) (Details, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var d Details
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("unmarshalling gateway log details: %w", err)
	}
	return d, nil
}
