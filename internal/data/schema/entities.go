package schema

import (
	"github.com/yungbote/baseapi-backend/internal/domain/audit"
	"github.com/yungbote/baseapi-backend/internal/domain/catalog"
	"github.com/yungbote/baseapi-backend/internal/domain/user"
)

func init() {
	MustRegister[catalog.Product](ProductDescriptor())
	MustRegister[user.User](UserDescriptor())
	MustRegister[audit.AuditLog](AuditLogDescriptor())
	MustRegister[audit.OperationLog](OperationLogDescriptor())
}

func ProductDescriptor() Descriptor[catalog.Product] {
	return Descriptor[catalog.Product]{
		Table:     "products",
		Policy:    DeleteSoft,
		Auditable: true,
		Fields: []Field[catalog.Product]{
			{Name: "id", Get: func(p *catalog.Product) any { return UUID(p.ID) }},
			{Name: "name", Get: func(p *catalog.Product) any { return p.Name }},
			{Name: "description", Get: func(p *catalog.Product) any { return p.Description }},
			{Name: "price", Get: func(p *catalog.Product) any { return p.Price }},
			{Name: "currency", Get: func(p *catalog.Product) any { return p.Currency }},
			{Name: "stock", Get: func(p *catalog.Product) any { return p.Stock }},
			{Name: "status", Get: func(p *catalog.Product) any { return string(p.Status) }},
			{Name: "created_at", Get: func(p *catalog.Product) any { return Time(p.CreatedAt) }},
			{Name: "created_by", Get: func(p *catalog.Product) any { return String(p.CreatedBy) }},
			{Name: "updated_at", Get: func(p *catalog.Product) any { return TimePtr(p.UpdatedAt) }},
			{Name: "updated_by", Get: func(p *catalog.Product) any { return String(p.UpdatedBy) }},
			{Name: "is_deleted", Get: func(p *catalog.Product) any { return p.IsDeleted }},
			{Name: "deleted_at", Get: func(p *catalog.Product) any { return TimePtr(p.DeletedAt) }},
			{Name: "deleted_by", Get: func(p *catalog.Product) any { return String(p.DeletedBy) }},
		},
	}
}

func UserDescriptor() Descriptor[user.User] {
	return Descriptor[user.User]{
		Table:     "users",
		Policy:    DeleteHard,
		Auditable: true,
		Fields: []Field[user.User]{
			{Name: "id", Get: func(u *user.User) any { return UUID(u.ID) }},
			{Name: "user_name", Get: func(u *user.User) any { return u.UserName }},
			{Name: "email", Get: func(u *user.User) any { return u.Email }},
			{Name: "first_name", Get: func(u *user.User) any { return u.FirstName }},
			{Name: "last_name", Get: func(u *user.User) any { return u.LastName }},
			{Name: "last_login_date", Get: func(u *user.User) any { return TimePtr(u.LastLoginDate) }},
			{Name: "is_active", Get: func(u *user.User) any { return u.IsActive }},
			{Name: "created_at", Get: func(u *user.User) any { return Time(u.CreatedAt) }},
			{Name: "created_by", Get: func(u *user.User) any { return String(u.CreatedBy) }},
			{Name: "updated_at", Get: func(u *user.User) any { return TimePtr(u.UpdatedAt) }},
			{Name: "updated_by", Get: func(u *user.User) any { return String(u.UpdatedBy) }},
		},
	}
}

func AuditLogDescriptor() Descriptor[audit.AuditLog] {
	return Descriptor[audit.AuditLog]{
		Table: "audit_logs",
		Fields: []Field[audit.AuditLog]{
			{Name: "id", Get: func(a *audit.AuditLog) any { return UUID(a.ID) }},
			{Name: "table_name", Get: func(a *audit.AuditLog) any { return a.Table }},
			{Name: "action", Get: func(a *audit.AuditLog) any { return string(a.Action) }},
			{Name: "entity_id", Get: func(a *audit.AuditLog) any { return a.TargetID }},
			{Name: "user_id", Get: func(a *audit.AuditLog) any { return String(a.UserID) }},
			{Name: "timestamp", Get: func(a *audit.AuditLog) any { return Time(a.Timestamp) }},
		},
	}
}

func OperationLogDescriptor() Descriptor[audit.OperationLog] {
	return Descriptor[audit.OperationLog]{
		Table: "logs",
		Fields: []Field[audit.OperationLog]{
			{Name: "id", Get: func(l *audit.OperationLog) any { return UUID(l.ID) }},
			{Name: "level", Get: func(l *audit.OperationLog) any { return string(l.Level) }},
			{Name: "message", Get: func(l *audit.OperationLog) any { return l.Message }},
			{Name: "source", Get: func(l *audit.OperationLog) any { return String(l.Source) }},
			{Name: "user_id", Get: func(l *audit.OperationLog) any { return String(l.UserID) }},
			{Name: "status_code", Get: func(l *audit.OperationLog) any { return IntPtr(l.StatusCode) }},
			{Name: "timestamp", Get: func(l *audit.OperationLog) any { return Time(l.Timestamp) }},
		},
	}
}
