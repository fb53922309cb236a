package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fichado-app/fichado-backend-go/internal/domain/attendance"
	"github.com/fichado-app/fichado-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetMyShifts(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// GetMyShifts implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyShifts(w http.ResponseWriter, r *http.Request) {
	filter := parseShiftFilter(r)

	results, err := h.attendanceService.GetMyShifts(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// List implements AttendanceHandler. Supervisor view of a single employee.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	filter := parseShiftFilter(r)

	results, err := h.attendanceService.ListShifts(r.Context(), employeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Status(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func parseShiftFilter(r *http.Request) attendance.ShiftFilter {
	filter := attendance.ShiftFilter{}

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	if p := r.URL.Query().Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			filter.Page = pageNum
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			filter.Limit = limitNum
		}
	}

	if sortOrder := r.URL.Query().Get("sort_order"); sortOrder != "" {
		filter.SortOrder = sortOrder
	}

	return filter
}
