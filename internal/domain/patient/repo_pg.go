package patient

import (
	"context"

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

const patientCols = `id, provider_id, first_name, last_name, phone, email, date_of_birth,
	gender, blood_group, allergies, chronic_conditions, insurance_provider,
	emergency_contact, notes, photo_url, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.ProviderID, &p.FirstName, &p.LastName, &p.Phone, &p.Email,
		&p.DateOfBirth, &p.Gender, &p.BloodGroup, &p.Allergies, &p.ChronicConditions,
		&p.InsuranceProvider, &p.EmergencyContact, &p.Notes, &p.PhotoURL,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO patients (id, provider_id, first_name, last_name, phone, email,
			date_of_birth, gender, blood_group, allergies, chronic_conditions,
			insurance_provider, emergency_contact, notes, photo_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, p.ProviderID, p.FirstName, p.LastName, p.Phone, p.Email,
		p.DateOfBirth, p.Gender, p.BloodGroup, p.Allergies, p.ChronicConditions,
		p.InsuranceProvider, p.EmergencyContact, p.Notes, p.PhotoURL)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, providerID, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.db.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND provider_id = $2`,
		id, providerID))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE patients SET first_name=$3, last_name=$4, phone=$5, email=$6,
			date_of_birth=$7, gender=$8, blood_group=$9, allergies=$10,
			chronic_conditions=$11, insurance_provider=$12, emergency_contact=$13,
			notes=$14, photo_url=$15, updated_at=NOW()
		WHERE id = $1 AND provider_id = $2`,
		p.ID, p.ProviderID, p.FirstName, p.LastName, p.Phone, p.Email,
		p.DateOfBirth, p.Gender, p.BloodGroup, p.Allergies, p.ChronicConditions,
		p.InsuranceProvider, p.EmergencyContact, p.Notes, p.PhotoURL)
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
		`DELETE FROM patients WHERE id = $1 AND provider_id = $2`, id, providerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+patientCols+` FROM patients WHERE provider_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
