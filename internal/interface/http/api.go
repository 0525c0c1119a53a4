package http

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/examhub/exam-room-scheduler/internal/application/command"
	"github.com/examhub/exam-room-scheduler/internal/application/query"
	"github.com/examhub/exam-room-scheduler/internal/domain/exam"
	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
	"github.com/examhub/exam-room-scheduler/internal/infrastructure/export"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST AND RESPONSE BODIES
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Matched bool               `json:"matched"`
	Token   string             `json:"token,omitempty"`
	Mode    identity.LoginMode `json:"mode,omitempty"`
	User    *identity.Identity `json:"user,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type changePasswordResponse struct {
	Outcome command.ChangePasswordOutcome `json:"outcome"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type allocateExamRequest struct {
	SubjectCode string   `json:"subjectCode"`
	ClassCodes  []string `json:"classCodes"`
	Date        string   `json:"date"`
	ShiftCode   string   `json:"shiftCode"`
	RoomNumber  string   `json:"roomNumber"`
}

type allocateExamResponse struct {
	Code    string       `json:"code"`
	Session exam.Session `json:"session"`
}

type updateProctorRequest struct {
	Proctor *string `json:"proctor"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTH
// ══════════════════════════════════════════════════════════════════════════════

// handleLogin answers 200 for both outcomes; a rejected login is
// {"matched": false}.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.deps.Login.Handle(r.Context(), command.LoginCommand{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Matched: res.Matched,
		Token:   res.Token,
		Mode:    res.Mode,
		User:    res.Identity,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Logout.Handle(r.Context(), sessionToken(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := s.deps.ChangePassword.Handle(r.Context(), command.ChangePasswordCommand{
		Token:           sessionToken(r.Context()),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changePasswordResponse{Outcome: outcome})
}

// handleCurrentUser answers 200 with "data": null when the request carries
// no live session.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	who, err := s.deps.CurrentUser.Lookup(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	// A typed nil keeps the "data" key in the envelope.
	writeJSON(w, http.StatusOK, who)
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Catalog.Users(r.Context())
	respond(w, data, err)
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := s.deps.UpdateUserRole.Handle(r.Context(), command.UpdateUserRoleCommand{
		InstitutionNumber: mux.Vars(r)["institutionNumber"],
		Role:              req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Catalog.Subjects(r.Context())
	respond(w, data, err)
}

func (s *Server) handleEnrollmentsBySubject(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Catalog.EnrollmentsBySubject(r.Context(), mux.Vars(r)["code"])
	respond(w, data, err)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Catalog.Rooms(r.Context())
	respond(w, data, err)
}

func (s *Server) handleScheduledRooms(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Schedule.ScheduledRooms(r.Context(), query.GetScheduledRoomsQuery{
		Date: r.URL.Query().Get("date"),
	})
	respond(w, data, err)
}

func (s *Server) handleListShifts(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Catalog.Shifts(r.Context())
	respond(w, data, err)
}

func (s *Server) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Catalog.Enrollments(r.Context())
	respond(w, data, err)
}

// ══════════════════════════════════════════════════════════════════════════════
// EXAMS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleAllocateExam(w http.ResponseWriter, r *http.Request) {
	var req allocateExamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.deps.AllocateExam.Handle(r.Context(), command.AllocateExamCommand{
		SubjectCode: req.SubjectCode,
		ClassCodes:  req.ClassCodes,
		Date:        req.Date,
		ShiftCode:   req.ShiftCode,
		RoomNumber:  req.RoomNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, allocateExamResponse{Code: res.SessionCode, Session: res.Session})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Schedule.Sessions(r.Context(), query.ViewSessionsQuery{
		Date: r.URL.Query().Get("date"),
	})
	respond(w, data, err)
}

func (s *Server) handleUpdateProctor(w http.ResponseWriter, r *http.Request) {
	var req updateProctorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cmd := command.UpdateProctorCommand{SessionCode: mux.Vars(r)["code"]}
	if req.Proctor != nil {
		cmd.Proctor = *req.Proctor
	}
	if err := s.deps.UpdateProctor.Handle(r.Context(), cmd); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport renders the workbook in memory so a failure can still be
// reported as JSON.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := s.deps.Exporter.WriteXLSX(r.Context(), &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="exam-schedule.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// respond writes data as 200 or err through the error mapping.
func respond[T any](w http.ResponseWriter, data T, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
