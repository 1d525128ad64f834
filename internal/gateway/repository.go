package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/database"
	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// Repository defines the persistence operations on gateways. Returned
// gateways do not have Devices populated; the service expands them.
type Repository interface {
	// GetByID returns ErrGatewayNotFound if the gateway does not exist.
	GetByID(ctx context.Context, id string) (*Gateway, error)

	// GetBySerialNumber returns ErrGatewayNotFound if no gateway matches.
	GetBySerialNumber(ctx context.Context, serial string) (*Gateway, error)

	// GetByIPv4Address returns ErrGatewayNotFound if no gateway matches.
	GetByIPv4Address(ctx context.Context, ip string) (*Gateway, error)

	// List returns one page of gateways, or all when q is nil, with the total.
	List(ctx context.Context, q *pagination.Query) (*ListResult, error)

	// Create inserts g, assigning ID and timestamps. Returns
	// ErrSerialNumberExists or ErrIPAddressExists on UNIQUE violations.
	Create(ctx context.Context, g *Gateway) error

	// Update applies a partial update, sets updated_at and returns the row.
	// Returns ErrGatewayNotFound if no row matched.
	Update(ctx context.Context, id string, req UpdateRequest, at time.Time) (*Gateway, error)

	// Delete removes a gateway. The store orphans its devices and drops
	// its audit entries. Returns ErrGatewayNotFound if no row matched.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed repository on db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteSelectGateway = `
	SELECT id, serial_number, name, ipv4_address, status, location, created_at, updated_at
	FROM gateways`

// GetByID retrieves a gateway by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Gateway, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySerialNumber retrieves the gateway with the given serial number.
func (r *SQLiteRepository) GetBySerialNumber(ctx context.Context, serial string) (*Gateway, error) {
	return r.getOne(ctx, "serial_number", serial)
}

// GetByIPv4Address retrieves the gateway with the given address.
func (r *SQLiteRepository) GetByIPv4Address(ctx context.Context, ip string) (*Gateway, error) {
	return r.getOne(ctx, "ipv4_address", ip)
}

func (r *SQLiteRepository) getOne(ctx context.Context, column, value string) (*Gateway, error) {
	row := r.db.QueryRowContext(ctx, sqliteSelectGateway+" WHERE "+column+" = ?", value) //nolint:gosec // column is a constant
	g, err := scanSQLiteGateway(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGatewayNotFound
		}
		return nil, fmt.Errorf("querying gateway: %w", err)
	}
	return g, nil
}

// List returns a page of gateways ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context, q *pagination.Query) (*ListResult, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM gateways").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting gateways: %w", err)
	}

	query := sqliteSelectGateway + " ORDER BY created_at, id"
	var args []any
	if q != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying gateways: %w", err)
	}
	defer rows.Close()

	items := []Gateway{}
	for rows.Next() {
		g, err := scanSQLiteGateway(rows)
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
func (r *SQLiteRepository) Create(ctx context.Context, g *Gateway) error {
	g.ID = uuid.NewString()
	g.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	g.UpdatedAt = g.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO gateways
			(id, serial_number, name, ipv4_address, status, location, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.SerialNumber, g.Name, g.IPv4Address, string(g.Status),
		nullableString(g.Location),
		database.FormatTime(g.CreatedAt), database.FormatTime(g.UpdatedAt),
	)
	if err != nil {
		return translateSQLiteError("inserting gateway", err)
	}
	return nil
}

// Update applies the present fields of req and returns the stored row.
func (r *SQLiteRepository) Update(ctx context.Context, id string, req UpdateRequest, at time.Time) (*Gateway, error) {
	sets := []string{"updated_at = ?"}
	args := []any{database.FormatTime(at)}

	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.IPv4Address != nil {
		sets = append(sets, "ipv4_address = ?")
		args = append(args, *req.IPv4Address)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*req.Status))
	}
	switch {
	case req.ClearLocation:
		sets = append(sets, "location = NULL")
	case req.Location != nil:
		sets = append(sets, "location = ?")
		args = append(args, *req.Location)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE gateways SET "+strings.Join(sets, ", ")+" WHERE id = ?", //nolint:gosec // column list is fixed
		args...,
	)
	if err != nil {
		return nil, translateSQLiteError("updating gateway", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return nil, ErrGatewayNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes a gateway by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM gateways WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting gateway: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrGatewayNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteGateway(row rowScanner) (*Gateway, error) {
	var g Gateway
	var status, createdAt, updatedAt string
	var location sql.NullString

	if err := row.Scan(&g.ID, &g.SerialNumber, &g.Name, &g.IPv4Address,
		&status, &location, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	g.Status = Status(status)
	if location.Valid {
		g.Location = &location.String
	}

	var err error
	if g.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func translateSQLiteError(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err, "gateways.serial_number"):
		return ErrSerialNumberExists
	case database.IsUniqueViolation(err, "gateways.ipv4_address"):
		return ErrIPAddressExists
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
