package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	auditdomain "github.com/rkimidis/acucare-pathways-sub001/internal/audit/domain"
	"github.com/rkimidis/acucare-pathways-sub001/internal/clinicalapi"
	"github.com/rkimidis/acucare-pathways-sub001/internal/clock"
	"github.com/rkimidis/acucare-pathways-sub001/internal/config"
	"github.com/rkimidis/acucare-pathways-sub001/internal/observability/metrics"
	"github.com/rkimidis/acucare-pathways-sub001/internal/roster"
	"github.com/rkimidis/acucare-pathways-sub001/internal/session"
	"github.com/rkimidis/acucare-pathways-sub001/internal/triage/domain"
)

type Params struct {
	fx.In

	Cfg     config.Config
	Client  clinicalapi.Client
	Roster  roster.Resolver
	Audit   auditdomain.Service `optional:"true"`
	Clock   clock.Clock
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// Engine owns one queue view per signed-in actor. Case data is never stored
// beyond the last fetched snapshot; the clinical API stays authoritative.
type Engine struct {
	cfg     config.Config
	client  clinicalapi.Client
	roster  roster.Resolver
	audit   auditdomain.Service
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	states map[string]*viewState
}

// viewState is the per-actor mount state. The default filter is computed
// exactly once, after the roster resolution attempt, and never refires.
type viewState struct {
	mu sync.Mutex

	filter         domain.QueueFilter
	filterResolved bool

	rosterResolved bool
	roster         *domain.DutyRosterWindow

	// epoch identifies the filter context a fetch was issued under; a
	// result arriving for an older epoch is discarded rather than mixed
	// into the current view.
	epoch uint64

	items  []domain.TriageCaseSummary
	counts domain.QueueAggregateCounts

	lastAttempt time.Time
	lastSuccess time.Time
	lastError   string

	credential string
}

func NewEngine(p Params) *Engine {
	return &Engine{
		cfg:     p.Cfg,
		client:  p.Client,
		roster:  p.Roster,
		audit:   p.Audit,
		clock:   p.Clock,
		log:     p.Log.Named("triage.engine"),
		metrics: p.Metrics,
		states:  make(map[string]*viewState),
	}
}

var _ domain.Service = (*Engine)(nil)

func (e *Engine) state(actorID string) *viewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[actorID]
	if !ok {
		st = &viewState{}
		e.states[actorID] = st
	}
	return st
}

// View returns the current queue snapshot for the actor, resolving the
// roster and establishing the default filter on first use. A filter carried
// in the navigation query always wins over the default.
func (e *Engine) View(ctx context.Context, actor session.Actor, credential string, query url.Values) (*domain.QueueView, error) {
	if !actor.Resolved() {
		return nil, domain.ErrSessionInvalid
	}
	st := e.state(actor.ID)
	st.mu.Lock()
	st.credential = credential

	if !st.rosterResolved {
		st.roster = e.roster.Resolve(ctx, credential)
		st.rosterResolved = true
	}

	if navFilter, present := domain.FilterFromQuery(query); present {
		st.filter = navFilter.Normalize()
		st.filterResolved = true
		st.epoch++
	} else if !st.filterResolved {
		// Default selection fires once, after the roster attempt above, so
		// a late roster can never flip an already-established default.
		st.filter = domain.DefaultFilter(actor.ID, st.roster)
		st.filterResolved = true
		st.epoch++
	}
	st.mu.Unlock()

	if err := e.fetch(ctx, actor, st, "view"); err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return nil, err
		}
		// transient failure: serve the last-good snapshot with the error
	}
	return e.snapshot(actor, st), nil
}

// SetFilter replaces the filter and refetches immediately.
func (e *Engine) SetFilter(ctx context.Context, actor session.Actor, credential string, filter domain.QueueFilter) (*domain.QueueView, error) {
	if !actor.Resolved() {
		return nil, domain.ErrSessionInvalid
	}
	st := e.state(actor.ID)
	st.mu.Lock()
	st.credential = credential
	st.filter = filter.Normalize()
	st.filterResolved = true
	st.epoch++
	st.mu.Unlock()

	if err := e.fetch(ctx, actor, st, "filter_change"); err != nil && errors.Is(err, domain.ErrSessionInvalid) {
		return nil, err
	}
	return e.snapshot(actor, st), nil
}

// Refresh refetches with the filter currently in effect.
func (e *Engine) Refresh(ctx context.Context, actor session.Actor, credential string) (*domain.QueueView, error) {
	if !actor.Resolved() {
		return nil, domain.ErrSessionInvalid
	}
	st := e.state(actor.ID)
	st.mu.Lock()
	st.credential = credential
	resolved := st.filterResolved
	st.mu.Unlock()

	if !resolved {
		return nil, domain.ErrFilterUnresolved
	}
	if err := e.fetch(ctx, actor, st, "manual"); err != nil && errors.Is(err, domain.ErrSessionInvalid) {
		return nil, err
	}
	return e.snapshot(actor, st), nil
}

// fetch issues one queue request and atomically replaces the snapshot on
// success. Superseded results (epoch moved on while in flight) are dropped.
func (e *Engine) fetch(ctx context.Context, actor session.Actor, st *viewState, trigger string) error {
	st.mu.Lock()
	if !st.filterResolved {
		st.mu.Unlock()
		return domain.ErrFilterUnresolved
	}
	filter := st.filter
	epoch := st.epoch
	credential := st.credential
	st.mu.Unlock()

	started := e.clock.Now()
	resp, err := e.client.FetchQueue(ctx, credential, filter.Query())
	elapsed := e.clock.Now().Sub(started)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.lastAttempt = e.clock.Now()

	if err != nil {
		if clinicalapi.IsAuthRejection(err) {
			e.recordRefresh(ctx, trigger, "session_invalid", elapsed)
			e.auditSessionInvalid(ctx, actor)
			return fmt.Errorf("%w: %v", domain.ErrSessionInvalid, err)
		}
		st.lastError = err.Error()
		e.recordRefresh(ctx, trigger, "error", elapsed)
		return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	if st.epoch != epoch {
		// a newer filter took over while this request was in flight
		e.recordRefresh(ctx, trigger, "superseded", elapsed)
		return nil
	}

	st.items = resp.Items
	st.counts = resp.Counts()
	st.lastSuccess = e.clock.Now()
	st.lastError = ""
	e.recordRefresh(ctx, trigger, "success", elapsed)
	return nil
}

// snapshot assembles the annotated view from the last-good fetch.
func (e *Engine) snapshot(actor session.Actor, st *viewState) *domain.QueueView {
	st.mu.Lock()
	defer st.mu.Unlock()

	sorted := make([]domain.TriageCaseSummary, len(st.items))
	copy(sorted, st.items)
	domain.SortByPriority(sorted)

	gate := domain.GateInput{
		Actor:  actor,
		IsDuty: st.roster != nil && st.roster.Includes(actor.ID),
	}

	items := make([]domain.AnnotatedCase, 0, len(sorted))
	for _, c := range sorted {
		items = append(items, domain.AnnotatedCase{
			TriageCaseSummary: c,
			Annotations:       domain.Annotate(c, gate),
		})
	}

	return &domain.QueueView{
		Items:       items,
		Counts:      st.counts,
		Filter:      st.filter,
		Roster:      st.roster,
		GeneratedAt: st.lastSuccess,
		Stale:       e.staleLocked(st),
		FetchError:  st.lastError,
	}
}

// staleLocked computes staleness against the last successful fetch.
// Callers must hold st.mu.
func (e *Engine) staleLocked(st *viewState) bool {
	if st.lastSuccess.IsZero() {
		return false
	}
	staleAfter := e.cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 5 * time.Minute
	}
	return e.clock.Now().Sub(st.lastSuccess) > staleAfter
}

// Claim takes an unassigned case for the acting clinician.
func (e *Engine) Claim(ctx context.Context, actor session.Actor, credential string, caseID string) error {
	return e.action(ctx, actor, credential, domain.ActionClaim, caseID, func() error {
		return e.client.ClaimCase(ctx, credential, caseID)
	}, auditdomain.RecordRequest{
		Action: auditdomain.ActionClaim,
		CaseID: caseID,
	})
}

// Unassign releases a case held by the acting clinician.
func (e *Engine) Unassign(ctx context.Context, actor session.Actor, credential string, caseID string) error {
	return e.action(ctx, actor, credential, domain.ActionUnassign, caseID, func() error {
		return e.client.UnassignCase(ctx, credential, caseID)
	}, auditdomain.RecordRequest{
		Action: auditdomain.ActionUnassign,
		CaseID: caseID,
	})
}

// Reassign hands a case to another clinician. Target and reason are both
// mandatory and validated before any remote call.
func (e *Engine) Reassign(ctx context.Context, actor session.Actor, credential string, req domain.ReassignRequest) error {
	target := strings.TrimSpace(req.TargetID)
	reason := strings.TrimSpace(req.Reason)
	if target == "" {
		return domain.ErrReassignTargetRequired
	}
	if reason == "" {
		return domain.ErrReassignReasonRequired
	}

	return e.action(ctx, actor, credential, domain.ActionReassign, req.CaseID, func() error {
		return e.client.ReassignCase(ctx, credential, req.CaseID, target, reason)
	}, auditdomain.RecordRequest{
		Action:   auditdomain.ActionReassign,
		CaseID:   req.CaseID,
		TargetID: target,
		Reason:   reason,
	})
}

// action runs one gated assignment transition and refetches on success.
// There is no optimistic mutation: the displayed list only ever changes via
// a completed fetch, so a lost claim race surfaces as an ordinary error.
func (e *Engine) action(ctx context.Context, actor session.Actor, credential string, act domain.Action, caseID string, call func() error, record auditdomain.RecordRequest) error {
	if !actor.Resolved() {
		return domain.ErrSessionInvalid
	}
	if strings.TrimSpace(caseID) == "" {
		return domain.ErrActionFailed
	}

	st := e.state(actor.ID)
	st.mu.Lock()
	st.credential = credential
	gate := domain.GateInput{
		Actor:  actor,
		IsDuty: st.roster != nil && st.roster.Includes(actor.ID),
	}
	known, found := findCase(st.items, caseID)
	st.mu.Unlock()

	if found && !domain.Allowed(gate, act, known) {
		e.recordAction(ctx, string(act), "rejected")
		e.auditAction(ctx, actor, record, auditdomain.OutcomeRejected)
		if act == domain.ActionClaim && known.Assigned() {
			return domain.ErrCaseAlreadyAssigned
		}
		return domain.ErrActionNotAllowed
	}

	if err := call(); err != nil {
		// 401/403 here is a permissions failure, not a dead session
		e.recordAction(ctx, string(act), "error")
		e.auditAction(ctx, actor, record, auditdomain.OutcomeError)
		return fmt.Errorf("%w: %v", domain.ErrActionFailed, err)
	}

	e.recordAction(ctx, string(act), "success")
	e.auditAction(ctx, actor, record, auditdomain.OutcomeSuccess)

	// refresh immediately so the view reflects the new state without
	// waiting for the next poll tick
	if err := e.fetch(ctx, actor, st, "post_action"); err != nil && errors.Is(err, domain.ErrSessionInvalid) {
		return err
	}
	return nil
}

func findCase(items []domain.TriageCaseSummary, caseID string) (domain.TriageCaseSummary, bool) {
	for _, c := range items {
		if c.ID == caseID {
			return c, true
		}
	}
	return domain.TriageCaseSummary{}, false
}

// refreshAll re-fetches every active view with its last credential. Driven
// by the poll ticker; failures stay quiet and the last-good list stands.
func (e *Engine) refreshAll(ctx context.Context) {
	e.mu.Lock()
	actors := make([]string, 0, len(e.states))
	for id := range e.states {
		actors = append(actors, id)
	}
	e.mu.Unlock()

	for _, id := range actors {
		st := e.state(id)
		st.mu.Lock()
		resolved := st.filterResolved
		wasStale := e.staleLocked(st)
		st.mu.Unlock()
		if !resolved {
			continue
		}

		actor := session.Actor{ID: id}
		if err := e.fetch(ctx, actor, st, "poll"); err != nil {
			e.log.Debug("poll refresh failed", zap.String("actor_id", id), zap.Error(err))
		}

		st.mu.Lock()
		nowStale := e.staleLocked(st)
		st.mu.Unlock()
		if !wasStale && nowStale && e.metrics != nil {
			e.metrics.RecordStaleTransition(ctx)
		}
	}
}

func (e *Engine) recordRefresh(ctx context.Context, trigger, outcome string, elapsed time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordQueueRefresh(ctx, trigger, outcome, elapsed)
	}
}

func (e *Engine) recordAction(ctx context.Context, action, outcome string) {
	if e.metrics != nil {
		e.metrics.RecordAssignmentAction(ctx, action, outcome)
	}
}

func (e *Engine) auditAction(ctx context.Context, actor session.Actor, record auditdomain.RecordRequest, outcome string) {
	if e.audit == nil {
		return
	}
	record.ActorID = actor.ID
	record.ActorRole = string(actor.Role)
	record.Outcome = outcome
	if err := e.audit.Record(ctx, record); err != nil {
		e.log.Warn("audit record failed", zap.String("action", record.Action), zap.Error(err))
	}
}

func (e *Engine) auditSessionInvalid(ctx context.Context, actor session.Actor) {
	if e.metrics != nil {
		e.metrics.RecordSessionInvalidated(ctx, "queue_fetch_rejected")
	}
	if e.audit == nil || !actor.Resolved() {
		return
	}
	err := e.audit.Record(ctx, auditdomain.RecordRequest{
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Action:    auditdomain.ActionSessionInvalidated,
		Outcome:   auditdomain.OutcomeError,
	})
	if err != nil {
		e.log.Warn("audit record failed", zap.Error(err))
	}
}
