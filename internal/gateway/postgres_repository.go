package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/postgres"
	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// PostgreSQL constraint names from the initial migration.
const (
	pgSerialKey = "gateways_serial_number_key"
	pgIPKey     = "gateways_ipv4_address_key"
)

const pgSelectGateway = `
	SELECT id::text, serial_number, name, ipv4_address, status, location, created_at, updated_at
	FROM gateways`

// PostgresRepository implements Repository using a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL-backed repository on pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByID retrieves a gateway by its identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Gateway, error) {
	return r.getOne(ctx, pgSelectGateway+" WHERE id = $1", id)
}

// GetBySerialNumber retrieves the gateway with the given serial number.
func (r *PostgresRepository) GetBySerialNumber(ctx context.Context, serial string) (*Gateway, error) {
	return r.getOne(ctx, pgSelectGateway+" WHERE serial_number = $1", serial)
}

// GetByIPv4Address retrieves the gateway with the given address.
func (r *PostgresRepository) GetByIPv4Address(ctx context.Context, ip string) (*Gateway, error) {
	return r.getOne(ctx, pgSelectGateway+" WHERE ipv4_address = $1", ip)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (*Gateway, error) {
	g, err := scanPgGateway(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGatewayNotFound
		}
		return nil, fmt.Errorf("querying gateway: %w", err)
	}
	return g, nil
}

// List returns a page of gateways ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context, q *pagination.Query) (*ListResult, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM gateways").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting gateways: %w", err)
	}

	query := pgSelectGateway + " ORDER BY created_at, id"
	var args []any
	if q != nil {
		query += " LIMIT $1 OFFSET $2"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying gateways: %w", err)
	}
	defer rows.Close()

	items := []Gateway{}
	for rows.Next() {
		g, err := scanPgGateway(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gateway: %w", err)
		}
		items = append(items, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gateways: %w", err)
	}

	return &ListResult{Items: items, Total: total}, nil
}

// Create inserts a new gateway.
func (r *PostgresRepository) Create(ctx context.Context, g *Gateway) error {
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	g.UpdatedAt = g.CreatedAt

	_, err := r.pool.Exec(ctx,
		`INSERT INTO gateways
			(id, serial_number, name, ipv4_address, status, location, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.SerialNumber, g.Name, g.IPv4Address, string(g.Status),
		g.Location, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return translatePgError("inserting gateway", err)
	}
	return nil
}

// Update applies the present fields of req and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, id string, req UpdateRequest, at time.Time) (*Gateway, error) {
	args := []any{at}
	sets := []string{"updated_at = $1"}
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.IPv4Address != nil {
		add("ipv4_address", *req.IPv4Address)
	}
	if req.Status != nil {
		add("status", string(*req.Status))
	}
	switch {
	case req.ClearLocation:
		sets = append(sets, "location = NULL")
	case req.Location != nil:
		add("location", *req.Location)
	}
	args = append(args, id)

	g, err := scanPgGateway(r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE gateways SET %s WHERE id = $%d
			RETURNING id::text, serial_number, name, ipv4_address, status, location, created_at, updated_at`,
			strings.Join(sets, ", "), len(args)),
		args...,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGatewayNotFound
		}
		return nil, translatePgError("updating gateway", err)
	}
	return g, nil
}

// Delete removes a gateway by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM gateways WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting gateway: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGatewayNotFound
	}
	return nil
}

func scanPgGateway(row pgx.Row) (*Gateway, error) {
	var g Gateway
	var status string

	if err := row.Scan(&g.ID, &g.SerialNumber, &g.Name, &g.IPv4Address,
		&status, &g.Location, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}

	g.Status = Status(status)
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return &g, nil
}

func translatePgError(op string, err error) error {
	switch {
	case postgres.IsUniqueViolation(err, pgSerialKey):
		return ErrSerialNumberExists
	case postgres.IsUniqueViolation(err, pgIPKey):
		return ErrIPAddressExists
	}
	return fmt.Errorf("%s: %w", op, err)
}
