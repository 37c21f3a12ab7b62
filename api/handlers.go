/*
handlers.go - HTTP API handlers for the shift planner

PURPOSE:
  Exposes the planner via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the planner service.

ENDPOINTS:
  Plan:
    GET    /api/state                          Full snapshot
    PUT    /api/state                          Replace the snapshot

  Reference data:
    GET    /api/regions                        Region codes and names
    GET    /api/holidays?year=&region=         Holidays of one region

  Employees:
    GET    /api/employees                      List employees
    POST   /api/employees                      Create employee
    GET    /api/employees/{id}                 Get employee
    PUT    /api/employees/{id}                 Update employee
    DELETE /api/employees/{id}                 Delete employee and entries
    GET    /api/employees/{id}/vacation?year=  Yearly vacation balance

  Entries:
    GET    /api/employees/{id}/entries/{date}  Find entry
    PATCH  /api/employees/{id}/entries/{date}  Merge a partial update
    DELETE /api/employees/{id}/entries/{date}  Clear the day

  Shifts:
    GET    /api/shifts                         List shifts
    POST   /api/shifts                         Create shift
    PUT    /api/shifts/{id}                    Update shift
    DELETE /api/shifts/{id}                    Delete shift (entries kept)

  Reports:
    GET    /api/reports/{year}/{month}         Monthly report

  Advisor:
    POST   /api/advisor/analyze                Free-text plan analysis
    POST   /api/advisor/holidays               Holiday research prompt

  Scenarios:
    GET    /api/scenarios                      List built-in plans
    POST   /api/scenarios/load                 Load a built-in plan
    POST   /api/scenarios/reset                Restore the default plan

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed input
  - 404: Employee or shift not found
  - 409: Vacation cap exceeded
  - 503: Advisory service unavailable
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - planner/planner.go: Service behind every handler
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shahabsali127/shiftplan/advisor"
	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/logger"
	"github.com/shahabsali127/shiftplan/planner"
	"github.com/shahabsali127/shiftplan/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the dependencies of every endpoint.
type Handler struct {
	Planner *planner.Planner
	log     logger.Logger
	now     func() time.Time
}

// NewHandler creates a handler around p.
func NewHandler(p *planner.Planner, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{Planner: p, log: log, now: time.Now}
}

// =============================================================================
// PLAN ENDPOINTS
// =============================================================================

// GetState returns the full snapshot.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Planner.Snapshot())
}

// PutState replaces the whole plan. Malformed snapshots leave the plan as it was.
func (h *Handler) PutState(w http.ResponseWriter, r *http.Request) {
	var snap schedule.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Planner.Import(r.Context(), snap); err != nil {
		h.writeDomainError(w, "Failed to import plan", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Planner.Snapshot())
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions := calendar.Regions()
	out := make([]RegionDTO, 0, len(regions))
	for _, reg := range regions {
		out = append(out, toRegionDTO(reg))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListHolidays returns the holidays of ?region= in ?year= (default: this year).
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	region, err := calendar.ParseRegion(r.URL.Query().Get("region"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid region", err)
		return
	}

	holidays := h.Planner.Holidays(year, region)
	if holidays == nil {
		holidays = []calendar.Holiday{}
	}
	writeJSON(w, http.StatusOK, HolidaysResponse{
		Year:     year,
		Region:   toRegionDTO(region),
		Holidays: holidays,
	})
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Planner.Employees())
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	emp, ok := h.Planner.Employee(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	emp, err := h.Planner.CreateEmployee(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, emp)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	emp, err := h.Planner.UpdateEmployee(r.Context(), id, in)
	if err != nil {
		h.writeDomainError(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// DeleteEmployee removes the employee and every entry they had.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	if err := h.Planner.DeleteEmployee(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetVacationBalance(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	year, err := h.yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	balance, err := h.Planner.VacationBalance(id, year)
	if err != nil {
		h.writeDomainError(w, "Failed to compute vacation balance", err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// =============================================================================
// ENTRY ENDPOINTS
// =============================================================================

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	entry, ok := h.Planner.FindEntry(id, date)
	if !ok {
		writeError(w, http.StatusNotFound, "Entry not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// PatchEntry merges the body onto the day's entry. The response reports
// stored=false when the merge left nothing to keep.
func (h *Handler) PatchEntry(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	var req EntryPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry", err)
		return
	}

	entry, stored, err := h.Planner.UpdateEntry(r.Context(), id, date, patch)
	if err != nil {
		h.writeDomainError(w, "Failed to update entry", err)
		return
	}
	resp := EntryResponse{Stored: stored}
	if stored {
		resp.Entry = &entry
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ClearEntry(w http.ResponseWriter, r *http.Request) {
	id := schedule.EmployeeID(chi.URLParam(r, "id"))
	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if _, err := h.Planner.ClearEntry(r.Context(), id, date); err != nil {
		h.writeDomainError(w, "Failed to clear entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SHIFT ENDPOINTS
// =============================================================================

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Planner.Shifts())
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sh, err := h.Planner.CreateShift(r.Context(), req.input())
	if err != nil {
		h.writeDomainError(w, "Failed to create shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))

	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sh, err := h.Planner.UpdateShift(r.Context(), id, req.input())
	if err != nil {
		h.writeDomainError(w, "Failed to update shift", err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// DeleteShift removes the definition only; entries pointing at it stay.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := schedule.ShiftID(chi.URLParam(r, "id"))
	if err := h.Planner.DeleteShift(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete shift", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Planner.MonthlyReport(year, time.Month(month)))
}

// =============================================================================
// ADVISOR ENDPOINTS
// =============================================================================

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	text, err := h.Planner.Ask(r.Context(), req.Query)
	if err != nil {
		h.writeDomainError(w, "Advisor request failed", err)
		return
	}
	writeJSON(w, http.StatusOK, AdvisorResponse{Text: text})
}

func (h *Handler) ResearchHolidays(w http.ResponseWriter, r *http.Request) {
	var req HolidayResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	region, err := calendar.ParseRegion(req.Region)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid region", err)
		return
	}
	if req.Year == 0 {
		req.Year = h.now().Year()
	}
	text, err := h.Planner.ResearchHolidays(r.Context(), req.Year, region)
	if err != nil {
		h.writeDomainError(w, "Advisor request failed", err)
		return
	}
	writeJSON(w, http.StatusOK, AdvisorResponse{Text: text})
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, planner.Scenarios())
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Planner.LoadScenario(r.Context(), req.ScenarioID); err != nil {
		h.writeDomainError(w, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Planner.Snapshot())
}

// ResetPlan reseeds the default employees and shifts and drops all entries.
func (h *Handler) ResetPlan(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.Reset(r.Context()); err != nil {
		h.writeDomainError(w, "Failed to reset plan", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Planner.Snapshot())
}

// =============================================================================
// HELPERS
// =============================================================================

func toRegionDTO(r calendar.Region) RegionDTO {
	return RegionDTO{Code: string(r), Name: r.Name()}
}

func (h *Handler) yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.now().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if year < 1 || year > 9999 {
		return 0, fmt.Errorf("year %d out of range", year)
	}
	return year, nil
}

// statusFor maps a planner error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case schedule.IsRuleViolation(err):
		return http.StatusConflict
	case schedule.IsNotFound(err):
		return http.StatusNotFound
	case schedule.IsClientError(err), errors.Is(err, advisor.ErrEmptyQuery):
		return http.StatusBadRequest
	case advisor.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.log.Errorf("%s: %v", message, err)
	}

	resp := ErrorResponse{Error: message, Details: err.Error()}

	var capErr *schedule.VacationCapError
	var snapErr *schedule.SnapshotError
	switch {
	case errors.As(err, &capErr):
		resp.Details = map[string]any{
			"message":     capErr.Error(),
			"employee_id": capErr.EmployeeID,
			"date":        capErr.Date,
			"on_vacation": capErr.OnVacation,
			"limit":       capErr.Limit,
		}
	case errors.As(err, &snapErr):
		resp.Details = snapErr.Problems
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
