package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/postgres"
	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// PostgreSQL constraint names from the initial migration.
const (
	pgUIDKey        = "peripheral_devices_uid_key"
	pgDeviceTypeFK  = "peripheral_devices_device_type_id_fkey"
	pgGatewayFK     = "peripheral_devices_gateway_id_fkey"
	pgSelectDevices = `
	SELECT d.id::text, d.uid, d.vendor, d.status, d.device_type_id, d.gateway_id::text,
		d.created_at, d.last_seen_at,
		t.id, t.name, t.description, t.created_at
	FROM peripheral_devices d
	JOIN device_types t ON t.id = d.device_type_id`
)

// PostgresRepository implements Repository using a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL-backed repository on pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByID retrieves a device by its identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	return r.getOne(ctx, pgSelectDevices+" WHERE d.id = $1", id)
}

// GetByUID retrieves the device owning uid.
func (r *PostgresRepository) GetByUID(ctx context.Context, uid int64) (*Device, error) {
	return r.getOne(ctx, pgSelectDevices+" WHERE d.uid = $1", uid)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*Device, error) {
	d, err := scanPgDevice(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}
	return d, nil
}

// GatewayExists reports whether a gateway row with id exists.
// The id is compared as text so a malformed id is simply absent.
func (r *PostgresRepository) GatewayExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM gateways WHERE id::text = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking gateway: %w", err)
	}
	return exists, nil
}

// List returns a page of devices ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context, q *pagination.Query) (*ListResult, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM peripheral_devices").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting devices: %w", err)
	}

	query := pgSelectDevices + " ORDER BY d.created_at, d.id"
	var args []any
	if q != nil {
		query += " LIMIT $1 OFFSET $2"
		args = append(args, q.Limit, q.Offset)
	}

	items, err := r.queryDevices(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// ListByGateways groups the attached devices of each gateway.
func (r *PostgresRepository) ListByGateways(ctx context.Context, gatewayIDs []string) (map[string][]Device, error) {
	out := make(map[string][]Device, len(gatewayIDs))
	if len(gatewayIDs) == 0 {
		return out, nil
	}

	devices, err := r.queryDevices(ctx,
		pgSelectDevices+" WHERE d.gateway_id::text = ANY($1) ORDER BY d.created_at, d.id",
		gatewayIDs,
	)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		out[*d.GatewayID] = append(out[*d.GatewayID], d)
	}
	return out, nil
}

// CountByGateway counts the devices attached to gatewayID.
func (r *PostgresRepository) CountByGateway(ctx context.Context, gatewayID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM peripheral_devices WHERE gateway_id = $1", gatewayID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting gateway devices: %w", err)
	}
	return n, nil
}

// Create inserts a new device.
func (r *PostgresRepository) Create(ctx context.Context, d *Device) error {
	d.ID = newID()
	d.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO peripheral_devices
			(id, uid, vendor, status, device_type_id, gateway_id, created_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.UID, d.Vendor, string(d.Status), d.DeviceTypeID,
		d.GatewayID, d.CreatedAt, d.LastSeenAt,
	)
	if err != nil {
		return translatePgError("inserting device", err)
	}
	return nil
}

// Update applies the present fields of req and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, id string, req UpdateRequest) (*Device, error) {
	var sets []string
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.UID != nil {
		add("uid", *req.UID)
	}
	if req.Vendor != nil {
		add("vendor", *req.Vendor)
	}
	if req.Status != nil {
		add("status", string(*req.Status))
	}
	if req.DeviceTypeID != nil {
		add("device_type_id", *req.DeviceTypeID)
	}
	if req.LastSeenAt != nil {
		add("last_seen_at", *req.LastSeenAt)
	}

	if len(sets) > 0 {
		args = append(args, id)
		tag, err := r.pool.Exec(ctx,
			fmt.Sprintf("UPDATE peripheral_devices SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
			args...,
		)
		if err != nil {
			return nil, translatePgError("updating device", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrDeviceNotFound
		}
	}

	return r.GetByID(ctx, id)
}

// SetGateway changes the device's gateway reference.
func (r *PostgresRepository) SetGateway(ctx context.Context, id string, gatewayID *string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE peripheral_devices SET gateway_id = $1 WHERE id = $2", gatewayID, id,
	)
	if err != nil {
		return fmt.Errorf("setting device gateway: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Delete removes a device by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM peripheral_devices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// ListTypes returns the device-type catalog.
func (r *PostgresRepository) ListTypes(ctx context.Context) ([]DeviceType, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name, description, created_at FROM device_types ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying device types: %w", err)
	}
	defer rows.Close()

	types := []DeviceType{}
	for rows.Next() {
		var t DeviceType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning device type: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device types: %w", err)
	}
	return types, nil
}

func (r *PostgresRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanPgDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

func scanPgDevice(row pgx.Row) (*Device, error) {
	var d Device
	var t DeviceType
	var status string

	if err := row.Scan(
		&d.ID, &d.UID, &d.Vendor, &status, &d.DeviceTypeID, &d.GatewayID,
		&d.CreatedAt, &d.LastSeenAt,
		&t.ID, &t.Name, &t.Description, &t.CreatedAt,
	); err != nil {
		return nil, err
	}

	d.Status = Status(status)
	d.CreatedAt = d.CreatedAt.UTC()
	if d.LastSeenAt != nil {
		seen := d.LastSeenAt.UTC()
		d.LastSeenAt = &seen
	}
	t.CreatedAt = t.CreatedAt.UTC()
	d.DeviceType = &t
	return &d, nil
}

func translatePgError(op string, err error) error {
	switch {
	case postgres.IsUniqueViolation(err, pgUIDKey):
		return ErrUIDExists
	case postgres.IsForeignKeyViolation(err, pgDeviceTypeFK):
		return ErrDeviceTypeNotFound
	case postgres.IsForeignKeyViolation(err, pgGatewayFK):
		return ErrGatewayNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
