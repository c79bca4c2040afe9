package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditdomain "github.com/rkimidis/acucare-pathways-sub001/internal/audit/domain"
	"github.com/rkimidis/acucare-pathways-sub001/internal/config"
	"github.com/rkimidis/acucare-pathways-sub001/internal/roster"
	"github.com/rkimidis/acucare-pathways-sub001/internal/session"
	triagedomain "github.com/rkimidis/acucare-pathways-sub001/internal/triage/domain"
)

type stubTriageService struct {
	view     *triagedomain.QueueView
	viewErr  error
	claimErr error

	lastQuery  url.Values
	lastFilter triagedomain.QueueFilter
	lastClaim  string
	reassigns  []triagedomain.ReassignRequest
}

func (s *stubTriageService) View(ctx context.Context, actor session.Actor, credential string, query url.Values) (*triagedomain.QueueView, error) {
	s.lastQuery = query
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	return s.view, nil
}

func (s *stubTriageService) SetFilter(ctx context.Context, actor session.Actor, credential string, filter triagedomain.QueueFilter) (*triagedomain.QueueView, error) {
	s.lastFilter = filter
	return s.view, nil
}

func (s *stubTriageService) Refresh(ctx context.Context, actor session.Actor, credential string) (*triagedomain.QueueView, error) {
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	return s.view, nil
}

func (s *stubTriageService) Claim(ctx context.Context, actor session.Actor, credential string, caseID string) error {
	s.lastClaim = caseID
	return s.claimErr
}

func (s *stubTriageService) Unassign(ctx context.Context, actor session.Actor, credential string, caseID string) error {
	return nil
}

func (s *stubTriageService) Reassign(ctx context.Context, actor session.Actor, credential string, req triagedomain.ReassignRequest) error {
	s.reassigns = append(s.reassigns, req)
	return nil
}

type stubAuditService struct {
	listResp auditdomain.ListResponse
	lastList auditdomain.ListRequest
}

func (s *stubAuditService) Record(ctx context.Context, req auditdomain.RecordRequest) error {
	return nil
}

func (s *stubAuditService) List(ctx context.Context, req auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	s.lastList = req
	return s.listResp, nil
}

type nilRoster struct{}

func (nilRoster) Resolve(ctx context.Context, credential string) *triagedomain.DutyRosterWindow {
	return nil
}

func newTestServer(t *testing.T, triageSvc triagedomain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	srv := NewServer(ServerParams{
		Gin:       r,
		Cfg:       config.Config{Environment: "test"},
		Sessions:  session.NewManager(config.Config{}),
		AuthzSvc:  authzForTest{},
		AuditSvc:  &stubAuditService{},
		TriageSvc: triageSvc,
		Roster:    roster.Resolver(nilRoster{}),
	})
	registerRoutes(srv)
	return srv
}

// authzForTest allows every route; forbidden paths are exercised through
// the error mapper directly.
type authzForTest struct{}

func (authzForTest) Authorize(ctx context.Context, actorID, role, object, action string) error {
	return nil
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "usr_1",
		"role": role,
		"name": "Dana Osei",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func doRequest(srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestGetQueue(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	stub := &stubTriageService{view: &triagedomain.QueueView{
		Items:       []triagedomain.AnnotatedCase{},
		GeneratedAt: now,
	}}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodGet, "/api/queue?tier=red&assigned=me", bearerToken(t, "clinician"), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "red", stub.lastQuery.Get("tier"))
	assert.Equal(t, "me", stub.lastQuery.Get("assigned"))

	var body struct {
		Data struct {
			Stale       bool   `json:"stale"`
			GeneratedAt string `json:"generated_at"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Data.Stale)
}

func TestGetQueueRequiresSession(t *testing.T) {
	srv := newTestServer(t, &stubTriageService{view: &triagedomain.QueueView{}})

	rec := doRequest(srv, http.MethodGet, "/api/queue", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetQueueSessionInvalidClearsCookie(t *testing.T) {
	stub := &stubTriageService{viewErr: triagedomain.ErrSessionInvalid}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodGet, "/api/queue", bearerToken(t, "clinician"), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies, "session cookie cleared on rejection")
	assert.Equal(t, session.DefaultCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}

func TestSetQueueFilter(t *testing.T) {
	stub := &stubTriageService{view: &triagedomain.QueueView{}}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPut, "/api/queue/filter", bearerToken(t, "clinician"),
		`{"tier":"amber","assigned":"unassigned"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, triagedomain.TierFilterAmber, stub.lastFilter.Tier)
	assert.Equal(t, triagedomain.AssignmentUnassigned, stub.lastFilter.Assignment)
}

func TestSetQueueFilterUnknownValuesFallBack(t *testing.T) {
	stub := &stubTriageService{view: &triagedomain.QueueView{}}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPut, "/api/queue/filter", bearerToken(t, "clinician"),
		`{"tier":"purple","assigned":"whoever"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, triagedomain.TierFilterAll, stub.lastFilter.Tier)
	assert.Equal(t, triagedomain.AssignmentAny, stub.lastFilter.Assignment)
}

func TestClaimCase(t *testing.T) {
	stub := &stubTriageService{view: &triagedomain.QueueView{}}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPost, "/api/triage-cases/case-42/claim", bearerToken(t, "clinician"), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "case-42", stub.lastClaim)
}

func TestClaimCaseConflict(t *testing.T) {
	stub := &stubTriageService{claimErr: triagedomain.ErrCaseAlreadyAssigned}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPost, "/api/triage-cases/case-42/claim", bearerToken(t, "clinician"), "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReassignCase(t *testing.T) {
	stub := &stubTriageService{view: &triagedomain.QueueView{}}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPost, "/api/triage-cases/case-7/reassign", bearerToken(t, "clinical_lead"),
		`{"user_id":"usr_5","reason":"shift handover"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.reassigns, 1)
	assert.Equal(t, "case-7", stub.reassigns[0].CaseID)
	assert.Equal(t, "usr_5", stub.reassigns[0].TargetID)
	assert.Equal(t, "shift handover", stub.reassigns[0].Reason)
}

func TestReassignCaseMissingFields(t *testing.T) {
	stub := &stubTriageService{view: &triagedomain.QueueView{}}
	srv := newTestServer(t, stub)

	rec := doRequest(srv, http.MethodPost, "/api/triage-cases/case-7/reassign", bearerToken(t, "clinical_lead"),
		`{"user_id":"usr_5"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.reassigns, "validation rejects before the service is called")
}

func TestAuthMe(t *testing.T) {
	srv := newTestServer(t, &stubTriageService{view: &triagedomain.QueueView{}})

	rec := doRequest(srv, http.MethodGet, "/auth/me", bearerToken(t, "clinician"), "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data session.Actor `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "usr_1", body.Data.ID)
	assert.Equal(t, session.RoleClinician, body.Data.Role)
	assert.Equal(t, "Dana Osei", body.Data.DisplayName)
}

func TestLoginSetsCookie(t *testing.T) {
	srv := newTestServer(t, &stubTriageService{view: &triagedomain.QueueView{}})
	token := bearerToken(t, "clinician")

	rec := doRequest(srv, http.MethodPost, "/auth/login", "", `{"token":"`+token+`"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, session.DefaultCookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
}

func TestLoginRejectsUnusableToken(t *testing.T) {
	srv := newTestServer(t, &stubTriageService{view: &triagedomain.QueueView{}})

	rec := doRequest(srv, http.MethodPost, "/auth/login", "", `{"token":"not-a-jwt"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"session invalid", triagedomain.ErrSessionInvalid, http.StatusUnauthorized},
		{"not allowed", triagedomain.ErrActionNotAllowed, http.StatusForbidden},
		{"already assigned", triagedomain.ErrCaseAlreadyAssigned, http.StatusConflict},
		{"missing target", triagedomain.ErrReassignTargetRequired, http.StatusBadRequest},
		{"missing reason", triagedomain.ErrReassignReasonRequired, http.StatusBadRequest},
		{"fetch failed", triagedomain.ErrFetchFailed, http.StatusBadGateway},
		{"action failed", triagedomain.ErrActionFailed, http.StatusBadGateway},
		{"bad page token", auditdomain.ErrInvalidPageToken, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapError(tc.err)
			assert.Equal(t, tc.status, status)
		})
	}
}
