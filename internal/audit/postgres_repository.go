package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// PostgresRepository stores audit entries in the gateway_logs table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates an audit repository on pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append inserts e and sets its sequential ID.
func (r *PostgresRepository) Append(ctx context.Context, e *Entry) error {
	fillDefaults(e)

	var details []byte
	if e.Details != nil {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshalling gateway log details: %w", err)
		}
		details = b
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO gateway_logs (gateway_id, action, details, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		e.GatewayID, string(e.Action), details, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("inserting gateway log: %w", err)
	}
	return nil
}

// ListByGateway returns one page of the gateway's entries, newest first.
func (r *PostgresRepository) ListByGateway(ctx context.Context, gatewayID string, q pagination.Query) (*ListResult, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM gateway_logs WHERE gateway_id = $1", gatewayID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting gateway logs: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, gateway_id::text, action, details, created_at
		 FROM gateway_logs
		 WHERE gateway_id = $1
		 ORDER BY id DESC
		 LIMIT $2 OFFSET $3`,
		gatewayID, q.Limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying gateway logs: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var action string
		var details []byte

		if err := rows.Scan(&e.ID, &e.GatewayID, &action, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning gateway log: %w", err)
		}
		e.Action = Action(action)
		e.CreatedAt = e.CreatedAt.UTC()
		if e.Details, err = unmarshalDetails(details); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gateway logs: %w", err)
	}

	return &ListResult{Entries: entries, Total: total}, nil
}
