package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/orbita-hub/orbita-learning-hub/internal/application/command"
	"github.com/orbita-hub/orbita-learning-hub/internal/application/query"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/community"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// ──────────────────────────────────────────────────────────────────────────────
// in-memory stores for wiring real handlers under httptest
// ──────────────────────────────────────────────────────────────────────────────

type memLedger struct {
	events []xp.Event
}

func (m *memLedger) Append(_ context.Context, e *xp.Event) error {
	m.events = append(m.events, *e)
	return nil
}

func (m *memLedger) ListByUser(_ context.Context, userID string) ([]xp.Event, error) {
	out := make([]xp.Event, 0)
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLedger) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]xp.Event, error) {
	all, _ := m.ListByUser(ctx, userID)
	out := make([]xp.Event, 0)
	for _, e := range all {
		if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLedger) ListRecentByUser(ctx context.Context, userID string, limit int) ([]xp.Event, error) {
	all, _ := m.ListByUser(ctx, userID)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type memAggregates struct {
	rows          map[string]*xp.Aggregate
	failIncrement bool
}

func (m *memAggregates) Get(_ context.Context, userID string) (*xp.Aggregate, error) {
	row, ok := m.rows[userID]
	if !ok {
		return nil, xp.ErrUserNotFound
	}
	return row.Clone(), nil
}

func (m *memAggregates) Increment(_ context.Context, userID string, amount int) (*xp.Aggregate, error) {
	if m.failIncrement {
		return nil, assert.AnError
	}
	row, ok := m.rows[userID]
	if !ok {
		return nil, xp.ErrUserNotFound
	}
	row.XP += amount
	row.XPMonthly += amount
	return row.Clone(), nil
}

func (m *memAggregates) SetLevel(_ context.Context, userID string, level xp.Level) error {
	m.rows[userID].Level = level
	return nil
}

func (m *memAggregates) SetMonthlyXP(_ context.Context, userID string, value int) error {
	m.rows[userID].XPMonthly = value
	return nil
}

func (m *memAggregates) List(_ context.Context) ([]xp.Aggregate, error) {
	out := make([]xp.Aggregate, 0, len(m.rows))
	for _, id := range m.sortedIDs() {
		out = append(out, *m.rows[id])
	}
	return out, nil
}

func (m *memAggregates) ListUserIDs(_ context.Context) ([]string, error) {
	return m.sortedIDs(), nil
}

func (m *memAggregates) sortedIDs() []string {
	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type memQuestions struct {
	questions []community.Question
	votes     []community.VoteCount
}

func (m *memQuestions) ListQuestions(_ context.Context) ([]community.Question, error) {
	return m.questions, nil
}

func (m *memQuestions) CountVotes(_ context.Context) ([]community.VoteCount, error) {
	return m.votes, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// fixture
// ──────────────────────────────────────────────────────────────────────────────

const testAdminKey = "sesame"

func newTestServer(t *testing.T) (*httptest.Server, *memAggregates) {
	t.Helper()

	ledger := &memLedger{}
	aggregates := &memAggregates{rows: map[string]*xp.Aggregate{
		"user-1": {UserID: "user-1", Name: "Ana", XP: 300, XPMonthly: 120, Level: 3},
		"user-2": {UserID: "user-2", Name: "Bruno", XP: 80, XPMonthly: 200, Level: 1},
	}}
	questions := &memQuestions{
		questions: []community.Question{{ID: "q1", AuthorID: "user-2"}},
		votes:     []community.VoteCount{{QuestionID: "q1", Count: 60}},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	require.NoError(t, err)

	server := NewServer(Config{
		Addr:         ":0",
		AdminKeyHash: string(hash),
	}, Dependencies{
		AwardXP:      command.NewAwardXPHandler(ledger, aggregates, nil, nil),
		Reconcile:    command.NewReconcileMonthlyXPHandler(ledger, aggregates, nil, nil),
		SyncLevels:   command.NewSyncLevelHandler(aggregates, nil),
		SyncCeilings: command.NewSyncMonthlyCeilingHandler(aggregates, nil),
		GetRanking:   query.NewGetRankingHandler(aggregates, nil, nil),
		GetTopMember: query.NewGetTopMemberHandler(questions),
		GetProfile:   query.NewGetProfileHandler(aggregates, ledger),
	})

	ts := httptest.NewServer(server.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, aggregates
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// ──────────────────────────────────────────────────────────────────────────────
// tests
// ──────────────────────────────────────────────────────────────────────────────

func TestAwardEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/xp/awards", awardXPRequest{
		UserID: "user-1", Source: "lesson", Amount: 250,
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body awardXPResponse
	decode(t, resp, &body)
	assert.NotEmpty(t, body.EventID)
	assert.Equal(t, 550, body.XP)
	assert.Equal(t, 370, body.XPMonthly)
	assert.Equal(t, 4, body.Level)
}

func TestAwardEndpoint_Validation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/xp/awards", awardXPRequest{
		UserID: "user-1", Source: "lesson", Amount: -5,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/xp/awards", awardXPRequest{
		UserID: "user-1", Source: "gift", Amount: 5,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAwardEndpoint_UnknownUser(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/xp/awards", awardXPRequest{
		UserID: "ghost", Source: "quiz", Amount: 10,
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAwardEndpoint_PartialFailure(t *testing.T) {
	ts, aggregates := newTestServer(t)
	aggregates.failIncrement = true

	resp := postJSON(t, ts.URL+"/api/v1/xp/awards", awardXPRequest{
		UserID: "user-1", Source: "bonus", Amount: 10,
	}, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body awardXPResponse
	decode(t, resp, &body)
	assert.True(t, body.PartialFailure)
	assert.NotEmpty(t, body.EventID)
}

func TestRankingEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/ranking?type=monthly")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body rankingResponse
	decode(t, resp, &body)
	assert.Equal(t, "monthly", body.Type)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "user-2", body.Entries[0].UserID)
	assert.Equal(t, 1, body.Entries[0].Position)
}

func TestRankingEndpoint_InvalidType(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/ranking?type=weekly")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTopMemberEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/members/top")
	require.NoError(t, err)

	var body topMemberResponse
	decode(t, resp, &body)
	assert.True(t, body.HasTopMember)
	assert.Equal(t, "user-2", body.UserID)
	assert.Equal(t, 60, body.TotalVotes)
	assert.Equal(t, community.TopMemberThreshold, body.Threshold)
}

func TestProfileEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/users/user-1/profile")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body profileResponse
	decode(t, resp, &body)
	assert.Equal(t, "Ana", body.Name)
	assert.Equal(t, 300, body.XP)
	assert.Equal(t, 500, body.NextLevelAt)

	resp, err = http.Get(ts.URL + "/api/v1/users/ghost/profile")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminEndpoints_RequireKey(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/admin/sync-ceiling", struct{}{}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/v1/admin/sync-ceiling", struct{}{}, map[string]string{
		adminKeyHeader: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminSyncCeiling(t *testing.T) {
	ts, aggregates := newTestServer(t)

	// user-2 violates the ceiling (xp_mensal 200 > xp 80).
	resp := postJSON(t, ts.URL+"/api/v1/admin/sync-ceiling", struct{}{}, map[string]string{
		adminKeyHeader: testAdminKey,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body syncCeilingResponse
	decode(t, resp, &body)
	assert.Equal(t, 2, body.CheckedUsers)
	require.Len(t, body.Fixes, 1)
	assert.Equal(t, "user-2", body.Fixes[0].UserID)
	assert.Equal(t, 80, aggregates.rows["user-2"].XPMonthly)
}

func TestAdminReconcile_DryRun(t *testing.T) {
	ts, aggregates := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/admin/reconcile", reconcileRequest{
		DryRun: true,
	}, map[string]string{adminKeyHeader: testAdminKey})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body reconcileAllResponse
	decode(t, resp, &body)
	assert.Equal(t, 2, body.TotalUsers)
	// Empty ledger, nonzero stored totals: everyone is drifted, nothing
	// written on a dry run.
	assert.Equal(t, 2, body.DriftedUsers)
	assert.Zero(t, body.AppliedUsers)
	assert.Equal(t, 120, aggregates.rows["user-1"].XPMonthly)
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
