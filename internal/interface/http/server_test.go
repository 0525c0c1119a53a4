package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/examhub/exam-room-scheduler/internal/application/command"
	"github.com/examhub/exam-room-scheduler/internal/application/query"
	"github.com/examhub/exam-room-scheduler/internal/dependencies/mocks"
	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/export"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/persistence/sqlite"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/security"
	"github.com/examhub/exam-room-scheduler/internal/interface/http/handlers"
)

type APISuite struct {
	suite.Suite
	handler http.Handler
	store   *sqlite.Store
	random  *mocks.MockRandom
	tokens  int
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func strPtr(s string) *string { return &s }

func (s *APISuite) SetupTest() {
	store, err := sqlite.Open(filepath.Join(s.T().TempDir(), "examhub.db"))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = store.Close() })
	s.store = store

	ctx := context.Background()
	cat := sqlite.NewCatalogRepository(store)
	s.Require().NoError(cat.UpsertPerson(ctx, catalog.Person{InstitutionNumber: "BN001", RosterNumber: "2301234567", Name: "Budi Santoso", Major: "Computer Science", Role: "student"}))
	s.Require().NoError(cat.UpsertPerson(ctx, catalog.Person{InstitutionNumber: "BN002", RosterNumber: "2307654321", Name: "Ani Wijaya", Major: "Computer Science", Role: "assistant", Initials: strPtr("AW23-1")}))
	s.Require().NoError(cat.UpsertRoom(ctx, catalog.Room{Number: "R601", Capacity: 40, Campus: "Anggrek"}))
	s.Require().NoError(cat.UpsertRoom(ctx, catalog.Room{Number: "R602", Capacity: 30, Campus: "Anggrek"}))
	s.Require().NoError(cat.UpsertSubject(ctx, catalog.Subject{Code: "COMP6048", Name: "Data Structures"}))
	s.Require().NoError(cat.UpsertEnrollment(ctx, catalog.Enrollment{ClassCode: "LA01", SubjectCode: "COMP6048", RosterNumber: "2301234567"}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exams := sqlite.NewExamRepository(store)
	accounts := sqlite.NewAccountRepository(store)
	sessions := identity.NewManager()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	s.random = mocks.NewMockRandom()
	s.tokens = 0

	health := handlers.NewCompositeHealthChecker("test")
	health.AddCheck("store", handlers.NewPingCheck(store))

	srv := NewServer(DefaultConfig(), Dependencies{
		Login: command.NewLoginHandler(accounts, sessions, hasher, command.LoginHandlerConfig{
			TokenGenerator: func() string {
				s.tokens++
				return fmt.Sprintf("token-%d", s.tokens)
			},
			Logger: logger,
		}),
		Logout:         command.NewLogoutHandler(sessions),
		ChangePassword: command.NewChangePasswordHandler(accounts, sessions, hasher, logger),
		UpdateUserRole: command.NewUpdateUserRoleHandler(cat, logger),
		AllocateExam:   command.NewAllocateExamHandler(exams, s.random, nil, logger),
		UpdateProctor:  command.NewUpdateProctorHandler(exams, nil, logger),
		Catalog:        query.NewCatalogHandler(cat),
		Schedule:       query.NewScheduleHandler(exams),
		CurrentUser:    query.NewCurrentUserHandler(sessions),
		Exporter:       export.NewScheduleExporter(exams, cat),
		Logger:         logger,
		HealthChecker:  health,
	})
	s.handler = srv.Handler()
}

func (s *APISuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) login(identifier, password string) string {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": identifier, "password": password}, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body struct {
		Data loginResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().True(body.Data.Matched)
	return body.Data.Token
}

// golden compares the indented response body with testdata/golden/<name>.golden.
func (s *APISuite) golden(name string, rec *httptest.ResponseRecorder) {
	var pretty bytes.Buffer
	s.Require().NoError(json.Indent(&pretty, rec.Body.Bytes(), "", "  "))

	g := goldie.New(s.T(),
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(s.T(), name, pretty.Bytes())
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

func (s *APISuite) TestLogin_Rejected() {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "2301234567", "password": "wrong"}, "")
	s.Equal(http.StatusOK, rec.Code)
	s.golden("login_rejected", rec)
}

func (s *APISuite) TestLogin_ByInitials() {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"identifier": "AW23-1", "password": "AW23-1"}, "")
	s.Equal(http.StatusOK, rec.Code)
	s.golden("login_by_initials", rec)
}

func (s *APISuite) TestLogin_MalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"identifier":`))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestProtectedRoutesNeedSession() {
	rec := s.do(http.MethodGet, "/api/v1/shifts", nil, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.golden("unauthorized", rec)

	rec = s.do(http.MethodGet, "/api/v1/shifts", nil, "forged")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *APISuite) TestCurrentUserAndLogout() {
	token := s.login("2301234567", "2301234567")

	rec := s.do(http.MethodGet, "/api/v1/auth/me", nil, token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"mode":"by-identifier"`)

	rec = s.do(http.MethodPost, "/api/v1/auth/logout", nil, token)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/auth/me", nil, token)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"success":true,"data":null}`, rec.Body.String())
}

func (s *APISuite) TestCurrentUser_NoneBeforeLogin() {
	rec := s.do(http.MethodGet, "/api/v1/auth/me", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"success":true,"data":null}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/auth/me", nil, "forged")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"success":true,"data":null}`, rec.Body.String())

	first := s.login("2301234567", "2301234567")
	rec = s.do(http.MethodGet, "/api/v1/auth/me", nil, first)
	s.Contains(rec.Body.String(), `"name":"Budi Santoso"`)
	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/api/v1/auth/logout", nil, first).Code)

	second := s.login("AW23-1", "AW23-1")
	rec = s.do(http.MethodGet, "/api/v1/auth/me", nil, second)
	s.Contains(rec.Body.String(), `"name":"Ani Wijaya"`)
	s.NotContains(rec.Body.String(), "Budi")
}

func (s *APISuite) TestShifts() {
	token := s.login("2301234567", "2301234567")
	rec := s.do(http.MethodGet, "/api/v1/shifts", nil, token)
	s.Equal(http.StatusOK, rec.Code)
	s.golden("shifts", rec)
}

func (s *APISuite) TestAllocateThenConflict() {
	token := s.login("2307654321", "2307654321")
	s.random.QueueIntn(7, 8)

	req := allocateExamRequest{SubjectCode: "COMP6048", ClassCodes: []string{"LA01"}, Date: "2024-06-10", ShiftCode: "2", RoomNumber: "R601"}
	rec := s.do(http.MethodPost, "/api/v1/exams", req, token)
	s.Equal(http.StatusCreated, rec.Code)
	s.golden("allocate_created", rec)

	req.RoomNumber = "R602"
	rec = s.do(http.MethodPost, "/api/v1/exams", req, token)
	s.Equal(http.StatusConflict, rec.Code)
	s.golden("allocate_conflict", rec)

	rec = s.do(http.MethodGet, "/api/v1/rooms/scheduled?date=2024-06-10", nil, token)
	s.Equal(http.StatusOK, rec.Code)
	s.golden("scheduled_rooms", rec)
}

func (s *APISuite) TestAllocate_ErrorStatuses() {
	token := s.login("2307654321", "2307654321")

	rec := s.do(http.MethodPost, "/api/v1/exams", allocateExamRequest{SubjectCode: "COMP6048", Date: "2024-13-01", ShiftCode: "1", RoomNumber: "R601"}, token)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), CodeInvalidDate)

	rec = s.do(http.MethodPost, "/api/v1/exams", allocateExamRequest{SubjectCode: "NOPE", Date: "2024-06-10", ShiftCode: "1", RoomNumber: "R601"}, token)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	s.random.QueueIntn(3, 3)
	rec = s.do(http.MethodPost, "/api/v1/exams", allocateExamRequest{SubjectCode: "COMP6048", Date: "2024-06-10", ShiftCode: "1", RoomNumber: "R601"}, token)
	s.Require().Equal(http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/api/v1/exams", allocateExamRequest{SubjectCode: "COMP6048", Date: "2024-06-11", ShiftCode: "1", RoomNumber: "R601"}, token)
	s.Equal(http.StatusConflict, rec.Code)
	s.Contains(rec.Body.String(), CodeCodeCollision)
}

func (s *APISuite) TestChangePasswordFlow() {
	token := s.login("2301234567", "2301234567")

	rec := s.do(http.MethodPost, "/api/v1/auth/password", changePasswordRequest{CurrentPassword: "bad", NewPassword: "n3w"}, token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"outcome":"incorrect-password"`)

	rec = s.do(http.MethodPost, "/api/v1/auth/password", changePasswordRequest{CurrentPassword: "2301234567", NewPassword: "n3w"}, token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"outcome":"password-changed"`)

	s.NotEmpty(s.login("2301234567", "n3w"))
}

func (s *APISuite) TestUpdateRoleAndProctor() {
	token := s.login("2307654321", "2307654321")

	rec := s.do(http.MethodPut, "/api/v1/users/BN001/role", updateRoleRequest{Role: "assistant"}, token)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPut, "/api/v1/users/BN404/role", updateRoleRequest{Role: "assistant"}, token)
	s.Equal(http.StatusNotFound, rec.Code)

	s.random.QueueIntn(11)
	rec = s.do(http.MethodPost, "/api/v1/exams", allocateExamRequest{SubjectCode: "COMP6048", Date: "2024-06-10", ShiftCode: "4", RoomNumber: "R602"}, token)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPut, "/api/v1/exams/TH011/proctor", updateProctorRequest{Proctor: strPtr("2307654321")}, token)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPut, "/api/v1/exams/TH011/proctor", updateProctorRequest{Proctor: strPtr("0000000000")}, token)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	var rejected JSONResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rejected))
	s.Require().NotNil(rejected.Error)
	s.Equal(CodeConstraint, rejected.Error.Code)
	s.Equal("foreign key constraint violated", rejected.Error.Message)

	rec = s.do(http.MethodGet, "/api/v1/exams?date=2024-06-10", nil, token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"proctor":"2307654321"`)
}

func (s *APISuite) TestEnrollmentsBySubject() {
	token := s.login("2301234567", "2301234567")

	rec := s.do(http.MethodGet, "/api/v1/subjects/COMP6048/enrollments", nil, token)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"classCode":"LA01"`)

	rec = s.do(http.MethodGet, "/api/v1/enrollments", nil, token)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestExport() {
	token := s.login("2307654321", "2307654321")
	s.random.QueueIntn(1)
	rec := s.do(http.MethodPost, "/api/v1/exams", allocateExamRequest{SubjectCode: "COMP6048", Date: "2024-06-10", ShiftCode: "1", RoomNumber: "R601"}, token)
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/exams/export.xlsx", nil, token)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(export.ContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	s.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	s.Require().NoError(err)
	s.Len(rows, 2)
	s.Equal("TH001", rows[1][0])
}

func (s *APISuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"healthy":true`)

	s.Require().NoError(s.store.Close())
	rec = s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *APISuite) TestClosedStoreIsUnavailable() {
	token := s.login("2301234567", "2301234567")
	s.Require().NoError(s.store.Close())

	rec := s.do(http.MethodGet, "/api/v1/rooms", nil, token)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *APISuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/nope", nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func TestServerRun_ListensAndDrains(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	srv := NewServer(cfg, Dependencies{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	require.Empty(t, srv.Addr())
	require.NoError(t, srv.Listen())
	require.ErrorContains(t, srv.Listen(), "already listening")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	cancel()
	require.NoError(t, <-done)
}
