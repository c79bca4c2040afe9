package domain

import (
	"context"
	"errors"
	"time"

	"github.com/rkimidis/acucare-pathways-sub001/pkg/db/pagination"
)

type RecordRequest struct {
	ActorID   string
	ActorRole string
	Action    string
	CaseID    string
	TargetID  string
	Reason    string
	Outcome   string
	Metadata  map[string]any
	RequestID string
}

type ListRequest struct {
	pagination.Pagination
	ActorID string     `form:"actor_id"`
	Action  string     `form:"action"`
	CaseID  string     `form:"case_id"`
	StartAt *time.Time `form:"start_at"`
	EndAt   *time.Time `form:"end_at"`
}

type ListResponse struct {
	pagination.PageInfo
	Actions []OperatorAction `json:"actions"`
}

type Service interface {
	Record(ctx context.Context, req RecordRequest) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidActor     = errors.New("invalid_actor")
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
