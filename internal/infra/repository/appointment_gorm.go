package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db    *gorm.DB
	retry RetryPolicy
	log   *zap.Logger
}

func NewAppointmentGormRepository(db *gorm.DB, retry RetryPolicy, log *zap.Logger) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db, retry: retry, log: log}
}

// Transaction runs fn inside one database transaction. The whole
// transaction is replayed on transient failures, so fn must not have side
// effects outside tx.
func (r *AppointmentGormRepository) Transaction(ctx context.Context, fn func(tx domain.Tx) error) error {
	return withRetry(ctx, r.retry, r.log, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormTx{gormQueries{db: tx}})
		})
	})
}

func (r *AppointmentGormRepository) queries() gormQueries {
	return gormQueries{db: r.db}
}

// --------------------------------------------------
// Snapshot reads (retried)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(ctx context.Context, id uint) (ap *models.Appointment, err error) {
	err = withRetry(ctx, r.retry, r.log, func() error {
		ap, err = r.queries().GetAppointment(ctx, id)
		return err
	})
	return ap, err
}

func (r *AppointmentGormRepository) ListAppointments(ctx context.Context, f domain.Filter) (out []models.Appointment, err error) {
	err = withRetry(ctx, r.retry, r.log, func() error {
		out, err = r.queries().ListAppointments(ctx, f)
		return err
	})
	return out, err
}

func (r *AppointmentGormRepository) CountActiveInSlot(ctx context.Context, date, clock string) (n int, err error) {
	err = withRetry(ctx, r.retry, r.log, func() error {
		n, err = r.queries().CountActiveInSlot(ctx, date, clock)
		return err
	})
	return n, err
}

func (r *AppointmentGormRepository) CountActiveBySlot(ctx context.Context, date string) (out map[string]int, err error) {
	err = withRetry(ctx, r.retry, r.log, func() error {
		out, err = r.queries().CountActiveBySlot(ctx, date)
		return err
	})
	return out, err
}

func (r *AppointmentGormRepository) CountActiveStaff(ctx context.Context) (n int, err error) {
	err = withRetry(ctx, r.retry, r.log, func() error {
		n, err = r.queries().CountActiveStaff(ctx)
		return err
	})
	return n, err
}

func (r *AppointmentGormRepository) GetStaff(ctx context.Context, id uint) (s *models.Staff, err error) {
	err = withRetry(ctx, r.retry, r.log, func() error {
		s, err = r.queries().GetStaff(ctx, id)
		return err
	})
	return s, err
}

func (r *AppointmentGormRepository) GetServicesByName(ctx context.Context, names []string) (out []models.Service, err error) {
	err = withRetry(ctx, r.retry, r.log, func() error {
		out, err = r.queries().GetServicesByName(ctx, names)
		return err
	})
	return out, err
}

// --------------------------------------------------
// Queries shared by the repository and transactions
// --------------------------------------------------

type gormQueries struct {
	db *gorm.DB
}

func (q gormQueries) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := q.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func (q gormQueries) ListAppointments(ctx context.Context, f domain.Filter) ([]models.Appointment, error) {
	query := q.db.WithContext(ctx).Preload("Staff")

	if f.Date != "" {
		query = query.Where("slot_date = ?", f.Date)
	}
	if f.From != "" {
		query = query.Where("slot_date >= ?", f.From)
	}
	if f.To != "" {
		query = query.Where("slot_date <= ?", f.To)
	}
	if f.StaffID != nil {
		query = query.Where("staff_id = ?", *f.StaffID)
	}
	if f.Unassigned {
		query = query.Where("staff_id IS NULL")
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}

	var apps []models.Appointment
	if err := query.
		Order("slot_date ASC").
		Order("slot_time ASC").
		Order("id ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (q gormQueries) CountActiveInSlot(ctx context.Context, date, clock string) (int, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("slot_date = ? AND slot_time = ? AND status <> ?", date, clock, string(domain.StatusCancelled)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (q gormQueries) CountActiveBySlot(ctx context.Context, date string) (map[string]int, error) {
	var rows []struct {
		Time  string
		Total int
	}
	if err := q.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("slot_time AS time, COUNT(*) AS total").
		Where("slot_date = ? AND status <> ?", date, string(domain.StatusCancelled)).
		Group("slot_time").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Time] = row.Total
	}
	return out, nil
}

func (q gormQueries) CountActiveStaff(ctx context.Context) (int, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("active = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (q gormQueries) GetStaff(ctx context.Context, id uint) (*models.Staff, error) {
	var s models.Staff
	if err := q.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStaffNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (q gormQueries) GetServicesByName(ctx context.Context, names []string) ([]models.Service, error) {
	var services []models.Service
	if len(names) == 0 {
		return services, nil
	}
	if err := q.db.WithContext(ctx).
		Where("name IN ?", names).
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

type gormTx struct {
	gormQueries
}

// LockSlot takes a transaction-scoped advisory lock on the slot key. It is
// released on commit or rollback.
func (t *gormTx) LockSlot(ctx context.Context, date, clock string) error {
	return t.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", slotLockKey(date, clock)).
		Error
}

func (t *gormTx) GetAppointmentForUpdate(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &ap, nil
}

func (t *gormTx) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return t.db.WithContext(ctx).Omit("Staff").Create(ap).Error
}

func (t *gormTx) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return t.db.WithContext(ctx).Omit("Staff").Save(ap).Error
}

func (t *gormTx) ListStaffAppointmentsInSlot(
	ctx context.Context,
	staffID uint,
	date string,
	clock string,
	excludeID uint,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := t.db.WithContext(ctx).
		Where(
			"staff_id = ? AND slot_date = ? AND slot_time = ? AND status <> ? AND id <> ?",
			staffID, date, clock, string(domain.StatusCancelled), excludeID,
		).
		Order("id ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func slotLockKey(date, clock string) string {
	return "slot:" + date + " " + clock
}

// Compile-time check
var (
	_ domain.Repository = (*AppointmentGormRepository)(nil)
	_ domain.Tx         = (*gormTx)(nil)
)
