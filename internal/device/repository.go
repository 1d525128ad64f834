package device

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

// Repository defines the persistence operations on peripheral devices.
// Reads return devices with their DeviceType expanded.
type Repository interface {
	// GetByID returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// GetByUID returns ErrDeviceNotFound if no device owns uid.
	GetByUID(ctx context.Context, uid int64) (*Device, error)

	// List returns one page of devices, or all of them when q is nil,
	// together with the total count.
	List(ctx context.Context, q *pagination.Query) (*ListResult, error)

	// ListByGateways returns the devices attached to each of the given gateways.
	ListByGateways(ctx context.Context, gatewayIDs []string) (map[string][]Device, error)

	// CountByGateway returns how many devices are attached to a gateway.
	CountByGateway(ctx context.Context, gatewayID string) (int, error)

	// Create inserts d, assigning its ID and CreatedAt.
	// Returns ErrUIDExists or ErrDeviceTypeNotFound on constraint violations.
	Create(ctx context.Context, d *Device) error

	// Update applies a partial update and returns the stored row.
	// Returns ErrDeviceNotFound if no row matched.
	Update(ctx context.Context, id string, req UpdateRequest) (*Device, error)

	// SetGateway attaches the device to gatewayID, or orphans it when nil.
	// Returns ErrDeviceNotFound if no row matched.
	SetGateway(ctx context.Context, id string, gatewayID *string) error

	// Delete removes a device. Returns ErrDeviceNotFound if no row matched.
	Delete(ctx context.Context, id string) error

	// ListTypes returns the device-type catalog ordered by id.
	ListTypes(ctx context.Context) ([]DeviceType, error)

	// GatewayExists reports whether a gateway row with id exists.
	GatewayExists(ctx context.Context, id string) (bool, error)
}

// newID returns a fresh device identifier.
func newID() string {
	return uuid.NewString()
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed repository on db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteSelectDevice = `
	SELECT d.id, d.uid, d.vendor, d.status, d.device_type_id, d.gateway_id,
		d.created_at, d.last_seen_at,
		t.id, t.name, t.description, t.created_at
	FROM peripheral_devices d
	JOIN device_types t ON t.id = d.device_type_id`

// GetByID retrieves a device by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	return r.getOne(ctx, sqliteSelectDevice+" WHERE d.id = ?", id)
}

// GetByUID retrieves the device owning uid.
func (r *SQLiteRepository) GetByUID(ctx context.Context, uid int64) (*Device, error) {
	return r.getOne(ctx, sqliteSelectDevice+" WHERE d.uid = ?", uid)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*Device, error) {
	d, err := scanSQLiteDevice(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}
	return d, nil
}

// List returns a page of devices ordered by creation time.
func (r *SQLiteRepository) List(ctx context.Context, q *pagination.Query) (*ListResult, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM peripheral_devices").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting devices: %w", err)
	}

	query := sqliteSelectDevice + " ORDER BY d.created_at, d.id"
	var args []any
	if q != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	items, err := r.queryDevices(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

// GatewayExists reports whether a gateway row with id exists.
func (r *SQLiteRepository) GatewayExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM gateways WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking gateway: %w", err)
	}
	return exists, nil
}

// ListByGateways groups the attached devices of each gateway.
func (r *SQLiteRepository) ListByGateways(ctx context.Context, gatewayIDs []string) (map[string][]Device, error) {
	out := make(map[string][]Device, len(gatewayIDs))
	if len(gatewayIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(gatewayIDs)), ",")
	args := make([]any, len(gatewayIDs))
	for i, id := range gatewayIDs {
		args[i] = id
	}

	query := sqliteSelectDevice + " WHERE d.gateway_id IN (" + placeholders + ") ORDER BY d.created_at, d.id" //nolint:gosec // only placeholders are interpolated
	devices, err := r.queryDevices(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		out[*d.GatewayID] = append(out[*d.GatewayID], d)
	}
	return out, nil
}

// CountByGateway counts the devices attached to gatewayID.
func (r *SQLiteRepository) CountByGateway(ctx context.Context, gatewayID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM peripheral_devices WHERE gateway_id = ?", gatewayID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting gateway devices: %w", err)
	}
	return n, nil
}

// Create inserts a new device.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	d.ID = newID()
	d.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO peripheral_devices
			(id, uid, vendor, status, device_type_id, gateway_id, created_at, last_seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UID, d.Vendor, string(d.Status), d.DeviceTypeID,
		nullableString(d.GatewayID), database.FormatTime(d.CreatedAt), nullableTime(d.LastSeenAt),
	)
	if err != nil {
		return r.translateInsertError(ctx, d, err)
	}
	return nil
}

// translateInsertError names the violated reference. SQLite does not say
// which foreign key failed, so a missing gateway is looked up explicitly.
func (r *SQLiteRepository) translateInsertError(ctx context.Context, d *Device, err error) error {
	if d.GatewayID != nil && database.IsForeignKeyViolation(err) {
		exists, lookupErr := r.GatewayExists(ctx, *d.GatewayID)
		if lookupErr != nil {
			return lookupErr
		}
		if !exists {
			return ErrGatewayNotFound
		}
	}
	return translateSQLiteError("inserting device", err)
}

// Update applies the present fields of req and returns the stored row.
func (r *SQLiteRepository) Update(ctx context.Context, id string, req UpdateRequest) (*Device, error) {
	var sets []string
	var args []any

	if req.UID != nil {
		sets = append(sets, "uid = ?")
		args = append(args, *req.UID)
	}
	if req.Vendor != nil {
		sets = append(sets, "vendor = ?")
		args = append(args, *req.Vendor)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*req.Status))
	}
	if req.DeviceTypeID != nil {
		sets = append(sets, "device_type_id = ?")
		args = append(args, *req.DeviceTypeID)
	}
	if req.LastSeenAt != nil {
		sets = append(sets, "last_seen_at = ?")
		args = append(args, database.FormatTime(*req.LastSeenAt))
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := r.db.ExecContext(ctx,
			"UPDATE peripheral_devices SET "+strings.Join(sets, ", ")+" WHERE id = ?", //nolint:gosec // column list is fixed
			args...,
		)
		if err != nil {
			return nil, translateSQLiteError("updating device", err)
		}
		if err := requireRow(res); err != nil {
			return nil, err
		}
	}

	return r.GetByID(ctx, id)
}

// SetGateway changes the device's gateway reference.
func (r *SQLiteRepository) SetGateway(ctx context.Context, id string, gatewayID *string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE peripheral_devices SET gateway_id = ? WHERE id = ?",
		nullableString(gatewayID), id,
	)
	if err != nil {
		return fmt.Errorf("setting device gateway: %w", err)
	}
	return requireRow(res)
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM peripheral_devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return requireRow(res)
}

// ListTypes returns the device-type catalog.
func (r *SQLiteRepository) ListTypes(ctx context.Context) ([]DeviceType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, created_at FROM device_types ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying device types: %w", err)
	}
	defer rows.Close()

	types := []DeviceType{}
	for rows.Next() {
		var t DeviceType
		var description sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning device type: %w", err)
		}
		if description.Valid {
			t.Description = &description.String
		}
		if t.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device types: %w", err)
	}
	return types, nil
}

func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanSQLiteDevice(rows)
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

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDevice(row rowScanner) (*Device, error) {
	var d Device
	var t DeviceType
	var status, createdAt, typeCreatedAt string
	var gatewayID, lastSeenAt, typeDescription sql.NullString

	if err := row.Scan(
		&d.ID, &d.UID, &d.Vendor, &status, &d.DeviceTypeID, &gatewayID,
		&createdAt, &lastSeenAt,
		&t.ID, &t.Name, &typeDescription, &typeCreatedAt,
	); err != nil {
		return nil, err
	}

	d.Status = Status(status)
	if gatewayID.Valid {
		d.GatewayID = &gatewayID.String
	}
	if typeDescription.Valid {
		t.Description = &typeDescription.String
	}

	var err error
	if d.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if lastSeenAt.Valid {
		seen, err := database.ParseTime(lastSeenAt.String)
		if err != nil {
			return nil, err
		}
		d.LastSeenAt = &seen
	}
	if t.CreatedAt, err = database.ParseTime(typeCreatedAt); err != nil {
		return nil, err
	}

	d.DeviceType = &t
	return &d, nil
}

// translateSQLiteError maps constraint failures onto domain errors.
func translateSQLiteError(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err, "peripheral_devices.uid"):
		return ErrUIDExists
	case database.IsForeignKeyViolation(err):
		return ErrDeviceTypeNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: database.FormatTime(*t), Valid: true}
}
