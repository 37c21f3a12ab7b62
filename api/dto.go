/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain types that
  already have a stable JSON form (schedule.Snapshot, schedule.Entry,
  calendar.Holiday, planner.MonthlyReport) are returned as they are.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TRI-STATE PATCH:
  PATCH /api/employees/{id}/entries/{date} distinguishes three states per
  field, which a plain struct cannot:

    key absent        leave the field alone
    key with null     clear the field
    key with a value  set the field

VALIDATION:
  Validation is done in the planner, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/planner"
	"github.com/shahabsali127/shiftplan/schedule"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeRequest is the body of employee create and update.
type EmployeeRequest struct {
	Name                      string          `json:"name"`
	Region                    string          `json:"region"`
	YearlyVacationEntitlement decimal.Decimal `json:"yearly_vacation_entitlement"`
}

func (r EmployeeRequest) input() (planner.EmployeeInput, error) {
	region, err := calendar.ParseRegion(r.Region)
	if err != nil {
		return planner.EmployeeInput{}, fmt.Errorf("%w: %v", schedule.ErrInvalidEntry, err)
	}
	return planner.EmployeeInput{
		Name:                      r.Name,
		Region:                    region,
		YearlyVacationEntitlement: r.YearlyVacationEntitlement,
	}, nil
}

// ShiftRequest is the body of shift create and update.
type ShiftRequest struct {
	Name      string          `json:"name"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Color     string          `json:"color"`
	Hours     decimal.Decimal `json:"hours"`
}

func (r ShiftRequest) input() planner.ShiftInput {
	return planner.ShiftInput{
		Name:      r.Name,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Color:     r.Color,
		Hours:     r.Hours,
	}
}

// EntryPatchRequest is the tri-state body of an entry PATCH.
type EntryPatchRequest map[string]json.RawMessage

var null = []byte("null")

// Patch converts the request into a schedule.EntryPatch. Unknown keys are
// rejected.
func (r EntryPatchRequest) Patch() (schedule.EntryPatch, error) {
	var p schedule.EntryPatch
	for key, raw := range r {
		isNull := bytes.Equal(bytes.TrimSpace(raw), null)
		switch key {
		case "shift_id":
			id := schedule.ShiftID("")
			if !isNull {
				var s string
				if err := json.Unmarshal(raw, &s); err != nil {
					return p, fmt.Errorf("%w: shift_id: %v", schedule.ErrInvalidEntry, err)
				}
				id = schedule.ShiftID(s)
			}
			p.ShiftID = &id
		case "absence":
			a := schedule.AbsenceNone
			if !isNull {
				var s string
				if err := json.Unmarshal(raw, &s); err != nil {
					return p, fmt.Errorf("%w: absence: %v", schedule.ErrInvalidEntry, err)
				}
				if s != "" {
					a = schedule.Absence(s)
				}
			}
			p.Absence = &a
		case "actual_hours":
			if isNull {
				p.ClearActualHours = true
				continue
			}
			var h decimal.Decimal
			if err := json.Unmarshal(raw, &h); err != nil {
				return p, fmt.Errorf("%w: actual_hours: %v", schedule.ErrInvalidEntry, err)
			}
			p.ActualHours = &h
		default:
			return p, fmt.Errorf("%w: unknown field %q", schedule.ErrInvalidEntry, key)
		}
	}
	return p, nil
}

// EntryResponse reports the entry after a PATCH. Stored is false when the
// patch emptied the entry and it was removed.
type EntryResponse struct {
	Entry  *schedule.Entry `json:"entry"`
	Stored bool            `json:"stored"`
}

// RegionDTO represents a region in API responses.
type RegionDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// HolidaysResponse lists the holidays of one region in one year.
type HolidaysResponse struct {
	Year     int                `json:"year"`
	Region   RegionDTO          `json:"region"`
	Holidays []calendar.Holiday `json:"holidays"`
}

// AnalyzeRequest is the body of POST /api/advisor/analyze.
type AnalyzeRequest struct {
	Query string `json:"query"`
}

// HolidayResearchRequest is the body of POST /api/advisor/holidays.
type HolidayResearchRequest struct {
	Year   int    `json:"year"`
	Region string `json:"region"`
}

// AdvisorResponse carries the service's free text unchanged.
type AdvisorResponse struct {
	Text string `json:"text"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
