package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/examhub/exam-room-scheduler/config"
	"github.com/examhub/exam-room-scheduler/internal/application/command"
	"github.com/examhub/exam-room-scheduler/internal/dependencies/mocks"
	"github.com/examhub/exam-room-scheduler/pkg/logger"
)

// catalogResponses answers the four collection queries by root field.
var catalogResponses = map[string]string{
	"getAllUser": `{"data":{"getAllUser":[
		{"bn_number":"BN-1","nim":2201,"name":"Ana Putri","major":"CS","role":"assistant","initial":"AP"},
		{"bn_number":"BN-2","nim":"2202","name":"Budi","major":"CS","role":"student","initial":null}
	]}}`,
	"getAllRoom": `{"data":{"getAllRoom":[
		{"campus":"Anggrek","room_capacity":40,"room_number":"R101"},
		{"campus":"Anggrek","room_capacity":30,"room_number":702}
	]}}`,
	"getAllSubject": `{"data":{"getAllSubject":[
		{"subject_name":"Algorithms","subject_code":"COMP6048"}
	]}}`,
	"getAllEnrollment": `{"data":{"getAllEnrollment":[
		{"class_code":"LA01","nim":"2202","subject_code":"COMP6048"}
	]}}`,
}

func newCatalogServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for field, body := range catalogResponses {
			if strings.Contains(req.Query, field+" ") || strings.Contains(req.Query, field+"{") {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
				return
			}
		}
		http.Error(w, "unknown query", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, catalogURL string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "examhub.db")
	cfg.Catalog.URL = catalogURL
	cfg.Catalog.MaxAttempts = 1
	cfg.Session.BcryptCost = 4
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	var n atomic.Int32
	a, err := New(context.Background(), cfg, Options{
		Logger: logger.Discard(),
		Random: mocks.NewMockRandom(6),
		TokenGenerator: func() string {
			return "token-" + strconv.Itoa(int(n.Add(1)))
		},
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NoError(t, a.Migrate(context.Background()))
	return a
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApp_SyncLoginAllocateExport(t *testing.T) {
	var hits atomic.Int32
	srv := newCatalogServer(t, &hits)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	report, err := a.Sync(ctx)
	require.NoError(t, err)
	require.Len(t, report.Stages, len(command.SyncStages))
	assert.Equal(t, int32(4), hits.Load())
	assert.Equal(t, 2, report.Stages[0].Upserted)

	h := a.Server().Handler()

	rec := call(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "AP",
		"password":   "AP",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Data struct {
			Matched bool   `json:"matched"`
			Token   string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.True(t, login.Data.Matched)
	assert.Equal(t, "token-1", login.Data.Token)

	rec = call(t, h, http.MethodPost, "/api/v1/exams", login.Data.Token, map[string]any{
		"subjectCode": "COMP6048",
		"classCodes":  []string{"LA01"},
		"date":        "2024-06-03",
		"shiftCode":   "1",
		"roomNumber":  "702",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"code":"TH006"`)

	var out bytes.Buffer
	n, err := a.Export(ctx, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := excelize.OpenReader(&out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TH006", rows[1][0])
}

func TestApp_SyncFailureKeepsReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	a := newTestApp(t, testConfig(t, srv.URL))

	report, err := a.Sync(context.Background())
	require.Error(t, err)

	var syncErr *command.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, command.StageRoster, syncErr.Stage)
	require.NotNil(t, report)
	assert.Equal(t, command.StageRoster, report.FailedStage)
}

func TestApp_RedisSessionsAndHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	var hits atomic.Int32
	srv := newCatalogServer(t, &hits)
	cfg := testConfig(t, srv.URL)
	cfg.Session.Store = config.SessionStoreRedis
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = port

	a := newTestApp(t, cfg)
	ctx := context.Background()
	_, err = a.Sync(ctx)
	require.NoError(t, err)

	status := a.Health(ctx)
	assert.True(t, status.Healthy)
	assert.Contains(t, status.Checks, "store")
	assert.Contains(t, status.Checks, "redis")

	h := a.Server().Handler()
	rec := call(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "2202",
		"password":   "2202",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, mr.Keys())

	rec = call(t, h, http.MethodGet, "/api/v1/auth/me", "token-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Budi"`)

	mr.Close()
	status = a.Health(ctx)
	assert.False(t, status.Healthy)
}

func TestApp_ExportFile(t *testing.T) {
	var hits atomic.Int32
	srv := newCatalogServer(t, &hits)
	a := newTestApp(t, testConfig(t, srv.URL))

	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	n, err := a.ExportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.Database.Driver = "oracle"

	_, err := New(context.Background(), cfg, Options{Logger: logger.Discard()})
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestApp_ServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "http://catalog.invalid/graphql")
	cfg.HTTP.Host = "127.0.0.1"
	cfg.HTTP.Port = 0
	cfg.App.ShutdownTimeout = time.Second
	a := newTestApp(t, cfg)

	require.NoError(t, a.Server().Listen())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	resp, err := http.Get("http://" + a.Server().Addr() + "/api/v1/shifts")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
