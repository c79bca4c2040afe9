package repository

import (
	"context"
	"strings"

	"github.com/rkimidis/acucare-pathways-sub001/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.OperatorAction) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.OperatorAction, error) {
	var actions []*domain.OperatorAction
	stmt := db.WithContext(ctx).Model(&domain.OperatorAction{})

	if actorID := strings.TrimSpace(filter.ActorID); actorID != "" {
		stmt = stmt.Where("actor_id = ?", actorID)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		stmt = stmt.Where("action = ?", action)
	}
	if caseID := strings.TrimSpace(filter.CaseID); caseID != "" {
		stmt = stmt.Where("case_id = ?", caseID)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("recorded_at >= ?", filter.StartAt.UTC())
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("recorded_at <= ?", filter.EndAt.UTC())
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(recorded_at < ?) OR (recorded_at = ? AND id < ?)",
			filter.Cursor.RecordedAt,
			filter.Cursor.RecordedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("recorded_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
