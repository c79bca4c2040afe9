package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/rkimidis/acucare-pathways-sub001/internal/audit/domain"
	"github.com/rkimidis/acucare-pathways-sub001/internal/audit/repository"
	"github.com/rkimidis/acucare-pathways-sub001/internal/clock"
)

func newTestService(t *testing.T, fake *clock.FakeClock) auditdomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.OperatorAction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
}

func TestRecordAndList(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, auditdomain.RecordRequest{
		ActorID:   "usr_1",
		ActorRole: "clinician",
		Action:    auditdomain.ActionClaim,
		CaseID:    "case-1",
		Outcome:   auditdomain.OutcomeSuccess,
	}))

	fake.Advance(time.Minute)
	require.NoError(t, svc.Record(ctx, auditdomain.RecordRequest{
		ActorID:  "usr_2",
		Action:   auditdomain.ActionReassign,
		CaseID:   "case-1",
		TargetID: "usr_3",
		Reason:   "handover at end of shift",
		Outcome:  auditdomain.OutcomeSuccess,
		Metadata: map[string]any{"source": "console"},
	}))

	resp, err := svc.List(ctx, auditdomain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Actions, 2)

	// newest first
	assert.Equal(t, auditdomain.ActionReassign, resp.Actions[0].Action)
	assert.Equal(t, "usr_3", resp.Actions[0].TargetID)
	assert.Equal(t, auditdomain.ActionClaim, resp.Actions[1].Action)
	assert.Equal(t, "usr_1", resp.Actions[1].ActorID)
	assert.False(t, resp.HasMore)
}

func TestRecordValidation(t *testing.T) {
	fake := clock.NewFakeClock(time.Now().UTC())
	svc := newTestService(t, fake)
	ctx := context.Background()

	err := svc.Record(ctx, auditdomain.RecordRequest{ActorID: "usr_1"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = svc.Record(ctx, auditdomain.RecordRequest{Action: auditdomain.ActionClaim})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidActor)
}

func TestListFilters(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	for _, req := range []auditdomain.RecordRequest{
		{ActorID: "usr_1", Action: auditdomain.ActionClaim, CaseID: "case-1", Outcome: auditdomain.OutcomeSuccess},
		{ActorID: "usr_1", Action: auditdomain.ActionUnassign, CaseID: "case-1", Outcome: auditdomain.OutcomeSuccess},
		{ActorID: "usr_2", Action: auditdomain.ActionClaim, CaseID: "case-2", Outcome: auditdomain.OutcomeError},
	} {
		require.NoError(t, svc.Record(ctx, req))
		fake.Advance(time.Second)
	}

	resp, err := svc.List(ctx, auditdomain.ListRequest{ActorID: "usr_1"})
	require.NoError(t, err)
	assert.Len(t, resp.Actions, 2)

	resp, err = svc.List(ctx, auditdomain.ListRequest{Action: auditdomain.ActionClaim})
	require.NoError(t, err)
	assert.Len(t, resp.Actions, 2)

	resp, err = svc.List(ctx, auditdomain.ListRequest{CaseID: "case-2"})
	require.NoError(t, err)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "usr_2", resp.Actions[0].ActorID)
}

func TestListPagination(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestService(t, fake)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(ctx, auditdomain.RecordRequest{
			ActorID: "usr_1",
			Action:  auditdomain.ActionClaim,
			CaseID:  "case-1",
			Outcome: auditdomain.OutcomeSuccess,
		}))
		fake.Advance(time.Second)
	}

	page := auditdomain.ListRequest{}
	page.PageSize = 2
	firstPage, err := svc.List(ctx, page)
	require.NoError(t, err)
	assert.Len(t, firstPage.Actions, 2)
	assert.True(t, firstPage.HasMore)
	require.NotEmpty(t, firstPage.NextPageToken)

	page.PageToken = firstPage.NextPageToken
	secondPage, err := svc.List(ctx, page)
	require.NoError(t, err)
	assert.Len(t, secondPage.Actions, 2)
	assert.NotEqual(t, firstPage.Actions[0].ID, secondPage.Actions[0].ID)
}

func TestListRejectsBadInput(t *testing.T) {
	fake := clock.NewFakeClock(time.Now().UTC())
	svc := newTestService(t, fake)
	ctx := context.Background()

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.List(ctx, auditdomain.ListRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)

	bad := auditdomain.ListRequest{}
	bad.PageToken = "%%%not-a-token%%%"
	_, err = svc.List(ctx, bad)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)
}
