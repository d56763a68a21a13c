package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

func NewRepoPG(db queryable) Repository { return &repoPG{db: db} }

const apptCols = `id, provider_id, patient_id, date, reason, type, doctor_assigned, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ProviderID, &a.PatientID, &a.Date, &a.Reason, &a.Type,
		&a.DoctorAssigned, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments (id, provider_id, patient_id, date, reason, type, doctor_assigned, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.ProviderID, a.PatientID, a.Date, a.Reason, a.Type, a.DoctorAssigned, a.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, providerID, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1 AND provider_id = $2`,
		id, providerID))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments SET patient_id=$3, date=$4, reason=$5, type=$6,
			doctor_assigned=$7, status=$8, updated_at=NOW()
		WHERE id = $1 AND provider_id = $2`,
		a.ID, a.ProviderID, a.PatientID, a.Date, a.Reason, a.Type, a.DoctorAssigned, a.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, providerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM appointments WHERE id = $1 AND provider_id = $2`, id, providerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, providerID uuid.UUID, filter ListFilter, limit, offset int) ([]*Appointment, int, error) {
	where := `provider_id = $1`
	args := []interface{}{providerID}

	if filter.PatientID != uuid.Nil {
		args = append(args, filter.PatientID)
		where += fmt.Sprintf(` AND patient_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE `+where+
			fmt.Sprintf(` ORDER BY date ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) PatientExists(ctx context.Context, providerID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1 AND provider_id = $2)`,
		patientID, providerID).Scan(&exists)
	return exists, err
}
