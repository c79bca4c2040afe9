package roster

import (
	"context"

	"go.uber.org/zap"

	"github.com/rkimidis/acucare-pathways-sub001/internal/clinicalapi"
	"github.com/rkimidis/acucare-pathways-sub001/internal/triage/domain"
)

// Resolver fetches the currently published duty roster window.
//
// The roster only improves default-filter selection, so it is never a hard
// dependency: any failure resolves to "no roster" without surfacing an
// error, and callers cache the outcome for the lifetime of their view.
type Resolver interface {
	Resolve(ctx context.Context, credential string) *domain.DutyRosterWindow
}

type resolver struct {
	client clinicalapi.Client
	log    *zap.Logger
}

func NewResolver(client clinicalapi.Client, log *zap.Logger) Resolver {
	return &resolver{client: client, log: log}
}

func (r *resolver) Resolve(ctx context.Context, credential string) *domain.DutyRosterWindow {
	window, err := r.client.CurrentRoster(ctx, credential)
	if err != nil {
		if r.log != nil {
			r.log.Debug("duty roster unavailable", zap.Error(err))
		}
		return nil
	}
	if window == nil || (window.Primary == nil && window.Backup == nil) {
		return nil
	}
	return window
}
