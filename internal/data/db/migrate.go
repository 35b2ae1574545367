package db

import (
	"fmt"

	types "github.com/yungbote/baseapi-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Aggregates
		// =========================
		&types.Product{},
		&types.User{},

		// =========================
		// Audit trail
		// =========================
		&types.AuditLog{},
		&types.OperationLog{},
	)
}

// EnsureAuditIndexes adds the composite lookup index operators use to read
// the trail of one entity. It is idempotent on both backends.
func EnsureAuditIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_audit_logs_table_entity ON audit_logs(table_name, entity_id);`).Error; err != nil {
		return fmt.Errorf("create idx_audit_logs_table_entity: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_products_status_stock ON products(status, stock);`).Error; err != nil {
		return fmt.Errorf("create idx_products_status_stock: %w", err)
	}
	return nil
}
