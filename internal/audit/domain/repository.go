package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// AuditCursor is the decoded keyset position for audit paging.
type AuditCursor struct {
	ID         snowflake.ID
	RecordedAt time.Time
}

// ListFilter narrows the audit listing.
type ListFilter struct {
	ActorID string
	Action  string
	CaseID  string
	StartAt *time.Time
	EndAt   *time.Time
	Cursor  *AuditCursor
	Limit   int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *OperatorAction) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*OperatorAction, error)
}
