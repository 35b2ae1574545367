package domain

import (
	"github.com/yungbote/baseapi-backend/internal/domain/audit"
	"github.com/yungbote/baseapi-backend/internal/domain/catalog"
	"github.com/yungbote/baseapi-backend/internal/domain/user"
)

const (
	ProductStatusActive       = catalog.ProductStatusActive
	ProductStatusInactive     = catalog.ProductStatusInactive
	ProductStatusDiscontinued = catalog.ProductStatusDiscontinued

	ActionInsert = audit.ActionInsert
	ActionUpdate = audit.ActionUpdate
	ActionDelete = audit.ActionDelete

	LevelDebug   = audit.LevelDebug
	LevelInfo    = audit.LevelInfo
	LevelWarning = audit.LevelWarning
	LevelError   = audit.LevelError
)

type Product = catalog.Product
type ProductStatus = catalog.ProductStatus
type Money = catalog.Money

type User = user.User

type AuditLog = audit.AuditLog
type OperationLog = audit.OperationLog
type Actor = audit.Actor
type Action = audit.Action
type Level = audit.Level
