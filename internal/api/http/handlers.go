package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/adamanr/shift_service/internal/entity"
	"github.com/oapi-codegen/runtime/types"
)

type approveCoverResponse struct {
	Message string `json:"message"`
	*entity.ApproveCoverResult
}

// GetCoverRequests lists cover requests filtered by query parameters.
func (s Server) GetCoverRequests(w http.ResponseWriter, r *http.Request) {
	var params entity.GetCoverRequestsParams
	if !s.bindQuery(w, r, map[string]any{
		"shift_id":              &params.ShiftID,
		"requested_employee_id": &params.RequestedEmployeeID,
		"accepted_employee_id":  &params.AcceptedEmployeeID,
		"status":                &params.Status,
	}) {
		return
	}

	requests, err := s.Controllers.CoverRequestController.List(r.Context(), params)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, requests, "success")
}

func (s Server) CreateCoverRequest(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateCoverRequest
	if !s.decode(w, r, &req) {
		return
	}

	scr, err := s.Controllers.CoverRequestController.Create(r.Context(), req)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, scr, "success")
}

// UpdateCoverRequest records an offer to cover, or withdraws one with an
// explicit null accepted_employee_id.
func (s Server) UpdateCoverRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var patch entity.CoverRequestPatch
	if !s.decode(w, r, &patch) {
		return
	}

	scr, err := s.Controllers.CoverRequestController.Update(r.Context(), id, patch)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, scr, "success")
}

func (s Server) ApproveCoverRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	result, err := s.Controllers.CoverRequestController.Approve(r.Context(), id)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, approveCoverResponse{
		Message:            "Cover request approved",
		ApproveCoverResult: result,
	}, "success")
}

func (s Server) DenyCoverRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	scr, err := s.Controllers.CoverRequestController.Deny(r.Context(), id)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, scr, "success")
}

func (s Server) DeleteCoverRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.Controllers.CoverRequestController.Delete(r.Context(), id); err != nil {
		s.httpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) GetTimeOffRequests(w http.ResponseWriter, r *http.Request) {
	var params entity.GetTimeOffParams
	if !s.bindQuery(w, r, map[string]any{
		"employee_id": &params.EmployeeID,
		"status":      &params.Status,
		"date_sort":   &params.DateSort,
	}) {
		return
	}

	requests, err := s.Controllers.TimeOffController.List(r.Context(), params)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, requests, "success")
}

func (s Server) CreateTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTimeOffRequest
	if !s.decode(w, r, &req) {
		return
	}

	tor, err := s.Controllers.TimeOffController.Create(r.Context(), req)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, tor, "success")
}

func (s Server) UpdateTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var patch entity.TimeOffPatch
	if !s.decode(w, r, &patch) {
		return
	}

	tor, err := s.Controllers.TimeOffController.Update(r.Context(), id, patch)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, tor, "success")
}

func (s Server) DeleteTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.Controllers.TimeOffController.Delete(r.Context(), id); err != nil {
		s.httpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) GetShifts(w http.ResponseWriter, r *http.Request) {
	var params entity.GetShiftsParams
	if !s.bindQuery(w, r, map[string]any{
		"employee_id": &params.EmployeeID,
		"section_id":  &params.SectionID,
		"start_date":  &params.StartDate,
		"end_date":    &params.EndDate,
	}) {
		return
	}

	shifts, err := s.Controllers.ShiftController.List(r.Context(), params)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, shifts, "success")
}

func (s Server) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateShiftRequest
	if !s.decode(w, r, &req) {
		return
	}

	shift, err := s.Controllers.ShiftController.Create(r.Context(), req)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, shift, "success")
}

func (s Server) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var patch entity.ShiftPatch
	if !s.decode(w, r, &patch) {
		return
	}

	shift, err := s.Controllers.ShiftController.Update(r.Context(), id, patch)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, shift, "success")
}

func (s Server) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.Controllers.ShiftController.Delete(r.Context(), id); err != nil {
		s.httpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var a entity.Announcement
	if !s.decode(w, r, &a) {
		return
	}

	created, err := s.Controllers.AnnouncementController.Create(r.Context(), a)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, created, "success")
}

func (s Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	var t entity.Task
	if !s.decode(w, r, &t) {
		return
	}

	created, err := s.Controllers.TaskController.Create(r.Context(), t)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusCreated, created, "success")
}

type materializeRequest struct {
	Date *types.Date `json:"date"`
}

// MaterializeTasks runs the recurring-task expansion for the given day,
// today (UTC) when the body has no date.
func (s Server) MaterializeTasks(w http.ResponseWriter, r *http.Request) {
	var req materializeRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}

	day := types.Date{Time: time.Now().UTC()}
	if req.Date != nil {
		day = *req.Date
	}

	result, err := s.Controllers.TaskController.Materialize(r.Context(), day)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, result, "success")
}

func (s Server) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	var token entity.PushToken
	if !s.decode(w, r, &token) {
		return
	}

	if err := s.Controllers.PushTokenController.Register(r.Context(), token); err != nil {
		s.httpError(w, err)
		return
	}

	s.deps.Logger.Info("Push token registered", slog.Int64("user_id", token.UserID))
	s.httpResponse(w, http.StatusOK, map[string]string{"message": "Token registered"}, "success")
}

func (s Server) UnregisterPushToken(w http.ResponseWriter, r *http.Request) {
	var token entity.PushToken
	if !s.decode(w, r, &token) {
		return
	}

	if err := s.Controllers.PushTokenController.Unregister(r.Context(), token); err != nil {
		s.httpError(w, err)
		return
	}

	s.httpResponse(w, http.StatusOK, map[string]string{"message": "Token removed"}, "success")
}
