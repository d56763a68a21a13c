package billing

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

const invoiceCols = `i.id, i.provider_id, i.patient_id, i.invoice_number, i.amount,
	i.paid_amount, i.status, i.due_date, i.paid_at, i.created_at, i.updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.ProviderID, &inv.PatientID, &inv.InvoiceNumber,
		&inv.Amount, &inv.PaidAmount, &inv.Status, &inv.DueDate, &inv.PaidAt,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoices (id, provider_id, patient_id, invoice_number, amount,
			paid_amount, status, due_date, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		inv.ID, inv.ProviderID, inv.PatientID, inv.InvoiceNumber, inv.Amount,
		inv.PaidAmount, inv.Status, inv.DueDate, inv.PaidAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, providerID, id uuid.UUID) (*Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, `
		SELECT `+invoiceCols+` FROM invoices i
		WHERE i.id = $1 AND i.provider_id = $2`, id, providerID))
}

// List returns invoices newest first with the patient's name joined in for
// display.
func (r *repoPG) List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceCols+`, p.first_name, p.last_name
		FROM invoices i
		JOIN patients p ON p.id = i.patient_id
		WHERE i.provider_id = $1
		ORDER BY i.created_at DESC
		LIMIT $2 OFFSET $3`, providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		var inv Invoice
		var first, last string
		if err := rows.Scan(&inv.ID, &inv.ProviderID, &inv.PatientID, &inv.InvoiceNumber,
			&inv.Amount, &inv.PaidAmount, &inv.Status, &inv.DueDate, &inv.PaidAt,
			&inv.CreatedAt, &inv.UpdatedAt, &first, &last); err != nil {
			return nil, 0, err
		}
		inv.Patient = &PatientRef{ID: inv.PatientID, FirstName: first, LastName: last}
		items = append(items, &inv)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context, providerID uuid.UUID) ([]*Invoice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceCols+` FROM invoices i
		WHERE i.provider_id = $1`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}

func (r *repoPG) PatientExists(ctx context.Context, providerID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1 AND provider_id = $2)`,
		patientID, providerID).Scan(&exists)
	return exists, err
}
