/*
Package advisor hands the plan to an external text-generation service.

The service is opaque: it receives one prompt and returns free text. This
package only builds prompts from the plan and moves them over the wire. No
structure is parsed out of the answer.

PROMPTS:
  - Analysis: planner persona + full plan as JSON + the user's question
  - Holiday research: statutory holidays of one state in one year
*/
package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/schedule"
)

var (
	// ErrUnavailable is returned when no advisory service is reachable or configured.
	ErrUnavailable = errors.New("advisor unavailable")

	// ErrEmptyQuery is returned for an analysis request without a question.
	ErrEmptyQuery = errors.New("query must not be empty")
)

// Kind distinguishes the prompts so a client can pick a model per purpose.
type Kind string

const (
	KindAnalysis        Kind = "analysis"
	KindHolidayResearch Kind = "holiday_research"
)

// Request is one prompt for the advisory service.
type Request struct {
	Kind   Kind   `json:"kind"`
	Prompt string `json:"prompt"`
}

const analysisTemplate = `Du bist ein erfahrener Personalplaner. Analysiere den folgenden Schichtplan und beantworte die Nutzeranfrage.

PLAN-DATEN (JSON): %s
NUTZERANFRAGE: %s`

const holidayTemplate = `Was sind die gesetzlichen Feiertage im Jahr %d für das Bundesland %s in Deutschland?`

// NewAnalysisRequest serializes the full plan and the user's free-text
// question into one prompt.
func NewAnalysisRequest(snapshot schedule.Snapshot, query string) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, ErrEmptyQuery
	}
	plan, err := json.Marshal(snapshot)
	if err != nil {
		return Request{}, fmt.Errorf("encode plan: %w", err)
	}
	return Request{
		Kind:   KindAnalysis,
		Prompt: fmt.Sprintf(analysisTemplate, plan, query),
	}, nil
}

// NewHolidayRequest asks the service for the public holidays of region in
// year, for cross-checking the computed calendar.
func NewHolidayRequest(year int, region calendar.Region) Request {
	return Request{
		Kind:   KindHolidayResearch,
		Prompt: fmt.Sprintf(holidayTemplate, year, region.Name()),
	}
}
