package medication

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

// -- Medication Repository --

type medicationRepoPG struct{ db queryable }

func NewMedicationRepoPG(db queryable) MedicationRepository { return &medicationRepoPG{db: db} }

const medCols = `id, provider_id, name, category, supplier, stock, price, cost_price,
	selling_price, expiry_date, sku, unit, description, is_active, created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.ProviderID, &m.Name, &m.Category, &m.Supplier, &m.Stock,
		&m.Price, &m.CostPrice, &m.SellingPrice, &m.ExpiryDate, &m.SKU, &m.Unit,
		&m.Description, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO medications (id, provider_id, name, category, supplier, stock, price,
			cost_price, selling_price, expiry_date, sku, unit, description, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		m.ID, m.ProviderID, m.Name, m.Category, m.Supplier, m.Stock, m.Price,
		m.CostPrice, m.SellingPrice, m.ExpiryDate, m.SKU, m.Unit, m.Description, m.IsActive)
	return err
}

func (r *medicationRepoPG) GetByID(ctx context.Context, providerID, id uuid.UUID) (*Medication, error) {
	return scanMedication(r.db.QueryRow(ctx,
		`SELECT `+medCols+` FROM medications WHERE id = $1 AND provider_id = $2`,
		id, providerID))
}

func (r *medicationRepoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE medications SET name=$3, category=$4, supplier=$5, stock=$6, price=$7,
			cost_price=$8, selling_price=$9, expiry_date=$10, sku=$11, unit=$12,
			description=$13, is_active=$14, updated_at=NOW()
		WHERE id = $1 AND provider_id = $2`,
		m.ID, m.ProviderID, m.Name, m.Category, m.Supplier, m.Stock, m.Price,
		m.CostPrice, m.SellingPrice, m.ExpiryDate, m.SKU, m.Unit, m.Description, m.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *medicationRepoPG) Delete(ctx context.Context, providerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM medications WHERE id = $1 AND provider_id = $2`, id, providerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *medicationRepoPG) List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM medications WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+medCols+` FROM medications WHERE provider_id = $1
		 ORDER BY name ASC LIMIT $2 OFFSET $3`,
		providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// -- Inventory Repository --

type inventoryRepoPG struct{ db queryable }

func NewInventoryRepoPG(db queryable) InventoryRepository { return &inventoryRepoPG{db: db} }

const invCols = `id, provider_id, medication_id, quantity_on_hand, reserved_quantity,
	reorder_level, reorder_quantity, location, batch_number, expiry_date,
	last_restocked_at, status, created_at, updated_at`

func scanInventory(row pgx.Row) (*InventoryItem, error) {
	var i InventoryItem
	err := row.Scan(&i.ID, &i.ProviderID, &i.MedicationID, &i.QuantityOnHand,
		&i.ReservedQuantity, &i.ReorderLevel, &i.ReorderQuantity, &i.Location,
		&i.BatchNumber, &i.ExpiryDate, &i.LastRestockedAt, &i.Status,
		&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *inventoryRepoPG) Upsert(ctx context.Context, i *InventoryItem) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO inventory (id, provider_id, medication_id, quantity_on_hand,
			reserved_quantity, reorder_level, reorder_quantity, location, batch_number,
			expiry_date, last_restocked_at, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (provider_id, medication_id, COALESCE(location, ''))
		DO UPDATE SET quantity_on_hand = EXCLUDED.quantity_on_hand,
			reserved_quantity = EXCLUDED.reserved_quantity,
			reorder_level = EXCLUDED.reorder_level,
			reorder_quantity = EXCLUDED.reorder_quantity,
			batch_number = EXCLUDED.batch_number,
			expiry_date = EXCLUDED.expiry_date,
			last_restocked_at = EXCLUDED.last_restocked_at,
			status = EXCLUDED.status,
			updated_at = NOW()`,
		i.ID, i.ProviderID, i.MedicationID, i.QuantityOnHand, i.ReservedQuantity,
		i.ReorderLevel, i.ReorderQuantity, i.Location, i.BatchNumber,
		i.ExpiryDate, i.LastRestockedAt, i.Status)
	return err
}

func (r *inventoryRepoPG) GetByMedication(ctx context.Context, providerID, medicationID uuid.UUID) ([]*InventoryItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+invCols+` FROM inventory
		 WHERE provider_id = $1 AND medication_id = $2 ORDER BY location NULLS FIRST`,
		providerID, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*InventoryItem
	for rows.Next() {
		i, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *inventoryRepoPG) List(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*InventoryItem, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM inventory WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+invCols+` FROM inventory WHERE provider_id = $1
		 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*InventoryItem
	for rows.Next() {
		i, err := scanInventory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}
