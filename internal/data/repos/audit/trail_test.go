package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/baseapi-backend/internal/data/criteria"
	"github.com/yungbote/baseapi-backend/internal/data/repos/testutil"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	types "github.com/yungbote/baseapi-backend/internal/domain"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/domain/audit"
	"gorm.io/gorm"
)

func seedAudit(t *testing.T, db *gorm.DB, table string, action audit.Action, entityID, userID string, at time.Time) {
	t.Helper()
	row := &types.AuditLog{
		ID:        uuid.New(),
		Table:     table,
		Action:    action,
		TargetID:  entityID,
		UserID:    testutil.Ptr(userID),
		Timestamp: at,
		CreatedAt: at,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed audit: %v", err)
	}
}

func TestTrailRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	seedAudit(t, db, "products", audit.ActionUpdate, "p1", "42", base.Add(time.Minute))
	seedAudit(t, db, "products", audit.ActionInsert, "p1", "42", base)
	seedAudit(t, db, "users", audit.ActionInsert, "u1", "7", base.Add(2*time.Minute))

	errLevel := &types.OperationLog{ID: uuid.New(), Level: audit.LevelError, Message: "boom", Timestamp: base, CreatedAt: base}
	if err := db.Create(errLevel).Error; err != nil {
		t.Fatalf("seed log: %v", err)
	}

	repo := NewTrailRepo(session.New(db, testutil.Logger(t)), testutil.Logger(t))

	trail, err := repo.ListByEntity(ctx, "products", "p1")
	if err != nil {
		t.Fatalf("ListByEntity: %v", err)
	}
	if len(trail) != 2 || trail[0].Action != audit.ActionInsert || trail[1].Action != audit.ActionUpdate {
		t.Fatalf("ListByEntity: expected INSERT then UPDATE, got %d rows", len(trail))
	}

	byUser, err := repo.ListByUser(ctx, "42", 1)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(byUser) != 1 || byUser[0].Action != audit.ActionUpdate {
		t.Fatalf("ListByUser: expected newest row only, got %+v", byUser)
	}

	inserts, err := repo.ListByAction(ctx, "users", audit.ActionInsert, 0)
	if err != nil || len(inserts) != 1 || inserts[0].TargetID != "u1" {
		t.Fatalf("ListByAction: %+v, %v", inserts, err)
	}

	logs, err := repo.LogsByLevel(ctx, audit.LevelError, 10)
	if err != nil || len(logs) != 1 || logs[0].Message != "boom" {
		t.Fatalf("LogsByLevel: %+v, %v", logs, err)
	}

	n, err := repo.CountAudits(ctx, criteria.Eq("table_name", "products"))
	if err != nil || n != 2 {
		t.Fatalf("CountAudits: %d, %v", n, err)
	}
	n, err = repo.CountLogs(ctx, criteria.Eq("level", string(audit.LevelInfo)))
	if err != nil || n != 0 {
		t.Fatalf("CountLogs: %d, %v", n, err)
	}

	if _, err := repo.CountAudits(ctx, criteria.Eq("password", "x")); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("unknown field: expected validation, got %v", err)
	}
	if _, err := repo.ListByEntity(ctx, "", "p1"); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("blank table: expected validation, got %v", err)
	}
}
