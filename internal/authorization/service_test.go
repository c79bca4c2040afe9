package authorization

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorize(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("clinician may view and claim", func(t *testing.T) {
		assert.NoError(t, svc.Authorize(ctx, "usr_1", "clinician", ObjectTriageQueue, ActionQueueView))
		assert.NoError(t, svc.Authorize(ctx, "usr_1", "clinician", ObjectTriageCase, ActionCaseClaim))
	})

	t.Run("clinician cannot read audit log", func(t *testing.T) {
		err := svc.Authorize(ctx, "usr_1", "clinician", ObjectAuditLog, ActionAuditLogView)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("lead and admin read audit log", func(t *testing.T) {
		assert.NoError(t, svc.Authorize(ctx, "usr_2", "clinical_lead", ObjectAuditLog, ActionAuditLogView))
		assert.NoError(t, svc.Authorize(ctx, "usr_3", "admin", ObjectAuditLog, ActionAuditLogView))
	})

	t.Run("other staff view but never claim", func(t *testing.T) {
		assert.NoError(t, svc.Authorize(ctx, "usr_4", "other", ObjectTriageQueue, ActionQueueView))
		assert.ErrorIs(t, svc.Authorize(ctx, "usr_4", "other", ObjectTriageCase, ActionCaseClaim), ErrForbidden)
	})

	t.Run("role change replaces grouping", func(t *testing.T) {
		require.NoError(t, svc.Authorize(ctx, "usr_5", "admin", ObjectAuditLog, ActionAuditLogView))
		err := svc.Authorize(ctx, "usr_5", "other", ObjectAuditLog, ActionAuditLogView)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("input validation", func(t *testing.T) {
		assert.ErrorIs(t, svc.Authorize(ctx, "", "admin", ObjectTriageQueue, ActionQueueView), ErrInvalidActor)
		assert.ErrorIs(t, svc.Authorize(ctx, "usr_1", "admin", "", ActionQueueView), ErrInvalidObject)
		assert.ErrorIs(t, svc.Authorize(ctx, "usr_1", "admin", ObjectTriageQueue, ""), ErrInvalidAction)
	})
}
