package repository

import "gorm.io/gorm"

// Migrate creates the schema. The partial unique index is raw SQL because
// gorm tags cannot express a WHERE clause: it is what guarantees at most
// one open draft per (store, employee) no matter how many writers race.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Sale{},
		&SaleItem{},
		&SalePayment{},
		&SaleVersion{},
		&Offer{},
		&Product{},
		&Store{},
		&Customer{},
	); err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_open_draft
		 ON sales (store_id, employee_id)
		 WHERE status = 'draft' AND deleted_at IS NULL`,
	).Error
}
