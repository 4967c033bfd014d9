package plantaudits

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qms/internal/audit"
	"qms/internal/identity"
	"qms/internal/platform/metrics"
	"qms/internal/uploads"
	"qms/pkg/testutil"
)

func newTestHandler(t *testing.T) (*chi.Mux, *MemoryStore, *audit.MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	auditStore := audit.NewMemoryStore()
	recorder := audit.NewRecorder(auditStore, testutil.DiscardLogger(), nil)
	t.Cleanup(recorder.Wait)

	saver, err := uploads.NewSaver(t.TempDir())
	require.NoError(t, err)

	h := NewHandler(NewService(store), saver, recorder, nil, testutil.DiscardLogger())
	r := chi.NewRouter()
	r.Route("/api/audits", h.Register)
	return r, store, auditStore
}

func auditor() identity.Identity {
	return identity.Identity{ID: 3, Name: "Elena Ruiz", Role: identity.RoleAuditor}
}

func TestHandleCreate(t *testing.T) {
	router, store, auditStore := newTestHandler(t)

	body := CreateRequest{
		Title:     "Monthly GMP walkthrough",
		Area:      "Packaging",
		AuditDate: "2026-08-20",
		Findings: []FindingRequest{
			{Severity: "Minor", Description: "Hairnet station low on stock"},
		},
	}
	req := testutil.WithIdentity(testutil.NewJSONRequest(t, http.MethodPost, "/api/audits", body), auditor())
	rr := testutil.DoRequest(router, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created Audit
	testutil.DecodeJSON(t, rr, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Monthly GMP walkthrough", created.Title)
	assert.Equal(t, 1, store.AuditCount())

	// Audit trail write is async.
	waitForEntries(t, auditStore, 1)
}

func TestHandleCreateValidation(t *testing.T) {
	router, store, _ := newTestHandler(t)

	req := testutil.WithIdentity(
		testutil.NewJSONRequest(t, http.MethodPost, "/api/audits", CreateRequest{Area: "Packaging"}),
		auditor(),
	)
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, store.AuditCount())
}

func TestHandleCreateRejectsGarbageBody(t *testing.T) {
	router, _, _ := newTestHandler(t)

	req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodPost, "/api/audits"), auditor())
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCreateMissingIdentity(t *testing.T) {
	router, _, _ := newTestHandler(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/audits", CreateRequest{}))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandleList(t *testing.T) {
	router, _, _ := newTestHandler(t)

	body := CreateRequest{Title: "Line 2 inspection", Area: "Mixing", AuditDate: "2026-08-21"}
	createReq := testutil.WithIdentity(testutil.NewJSONRequest(t, http.MethodPost, "/api/audits", body), auditor())
	require.Equal(t, http.StatusCreated, testutil.DoRequest(router, createReq).Code)

	listReq := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/api/audits"), auditor())
	rr := testutil.DoRequest(router, listReq)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Audits []Audit `json:"audits"`
	}
	testutil.DecodeJSON(t, rr, &resp)
	assert.Len(t, resp.Audits, 1)
}

func TestHandleGet(t *testing.T) {
	router, _, _ := newTestHandler(t)

	body := CreateRequest{
		Title:     "Cold room audit",
		Area:      "Storage",
		AuditDate: "2026-08-22",
		Findings:  []FindingRequest{{Severity: "Major", Description: "Door seal torn"}},
	}
	createReq := testutil.WithIdentity(testutil.NewJSONRequest(t, http.MethodPost, "/api/audits", body), auditor())
	createRR := testutil.DoRequest(router, createReq)
	require.Equal(t, http.StatusCreated, createRR.Code)

	var created Audit
	testutil.DecodeJSON(t, createRR, &created)

	getReq := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/api/audits/1"), auditor())
	rr := testutil.DoRequest(router, getReq)

	require.Equal(t, http.StatusOK, rr.Code)
	var detail Detail
	testutil.DecodeJSON(t, rr, &detail)
	assert.Equal(t, created.ID, detail.Header.ID)
	assert.Len(t, detail.Findings, 1)
}

func TestHandleGetNotFound(t *testing.T) {
	router, _, _ := newTestHandler(t)

	req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/api/audits/42"), auditor())
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleGetInvalidID(t *testing.T) {
	router, _, _ := newTestHandler(t)

	req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/api/audits/abc"), auditor())
	rr := testutil.DoRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCreateCountsForm(t *testing.T) {
	store := NewMemoryStore()
	recorder := audit.NewRecorder(audit.NewMemoryStore(), testutil.DiscardLogger(), nil)
	t.Cleanup(recorder.Wait)
	saver, err := uploads.NewSaver(t.TempDir())
	require.NoError(t, err)

	m := &metrics.Metrics{
		FormsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forms_created_test_total",
		}, []string{"module"}),
	}
	h := NewHandler(NewService(store), saver, recorder, m, testutil.DiscardLogger())
	router := chi.NewRouter()
	router.Route("/api/audits", h.Register)

	body := CreateRequest{Title: "Sanitation check", Area: "Mixing", AuditDate: "2026-08-21"}
	req := testutil.WithIdentity(testutil.NewJSONRequest(t, http.MethodPost, "/api/audits", body), auditor())
	rr := testutil.DoRequest(router, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.FormsCreated.WithLabelValues(audit.ModuleAudits)))
}

func waitForEntries(t *testing.T, store *audit.MemoryStore, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(store.All()) >= want
	}, time.Second, 10*time.Millisecond)
}
