// Package http exposes the projection and billing services as a JSON
// API. Handlers parse and validate input, delegate to services and
// translate domain errors to statuses; no calendar arithmetic lives here.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"scadenze/internal/core"
	"scadenze/internal/log"
	"scadenze/internal/services"
)

const dateLayout = "2006-01-02"

type Handler struct {
	projections *services.ProjectionService
	cycles      *services.CycleService
	logger      *log.Logger
}

func NewHandler(projections *services.ProjectionService, cycles *services.CycleService, logger *log.Logger) *Handler {
	return &Handler{
		projections: projections,
		cycles:      cycles,
		logger:      logger.WithComponent(log.ComponentHTTP),
	}
}

// Routes registers all API endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /api/projections", h.handleProjections)
	mux.HandleFunc("GET /api/cards/{cardID}/cycle", h.handleGetCycle)
	mux.HandleFunc("POST /api/cards/{cardID}/cycle/pay", h.handlePayCycle)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type occurrenceResponse struct {
	ObligationID int64  `json:"obligation_id"`
	Date         string `json:"date"`
	AmountCents  int64  `json:"amount_cents"`
	Direction    string `json:"direction"`
}

type projectionResponse struct {
	From        string               `json:"from"`
	To          string               `json:"to"`
	Occurrences []occurrenceResponse `json:"occurrences"`
}

func (h *Handler) handleProjections(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	occurrences, err := h.projections.ProjectWindow(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := projectionResponse{
		From:        from.Format(dateLayout),
		To:          to.Format(dateLayout),
		Occurrences: make([]occurrenceResponse, 0, len(occurrences)),
	}
	for _, occ := range occurrences {
		resp.Occurrences = append(resp.Occurrences, occurrenceResponse{
			ObligationID: occ.ObligationID,
			Date:         occ.Date.Format(dateLayout),
			AmountCents:  occ.Amount.Cents,
			Direction:    string(occ.Direction),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type cycleResponse struct {
	CardID         int64  `json:"card_id"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	DueDate        string `json:"due_date"`
	Status         string `json:"status"`
	ProcessedCents int64  `json:"processed_cents"`
	PendingCents   int64  `json:"pending_cents"`
	TotalCents     int64  `json:"total_cents"`
	DaysUntilDue   int    `json:"days_until_due"`
}

func toCycleResponse(c core.BillingCycle) cycleResponse {
	return cycleResponse{
		CardID:         c.CardID,
		Month:          c.Month,
		Year:           c.Year,
		PeriodStart:    c.PeriodStart.Format(dateLayout),
		PeriodEnd:      c.PeriodEnd.Format(dateLayout),
		DueDate:        c.DueDate.Format(dateLayout),
		Status:         string(c.Status),
		ProcessedCents: c.Processed.Cents,
		PendingCents:   c.Pending.Cents,
		TotalCents:     c.Total.Cents,
		DaysUntilDue:   c.DaysUntilDue,
	}
}

// handleGetCycle resolves one statement. Without month and year it
// falls back to the cycle currently accumulating charges.
func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	cardID, err := parseCardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var cycle core.BillingCycle
	if r.URL.Query().Get("month") == "" && r.URL.Query().Get("year") == "" {
		cycle, err = h.cycles.ActiveCycle(r.Context(), cardID)
	} else {
		var month, year int
		month, year, err = parseMonthYear(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cycle, err = h.cycles.GetCycle(r.Context(), cardID, month, year)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCycleResponse(cycle))
}

type payCycleRequest struct {
	Month            int   `json:"month"`
	Year             int   `json:"year"`
	FundingAccountID int64 `json:"funding_account_id"`
}

func (h *Handler) handlePayCycle(w http.ResponseWriter, r *http.Request) {
	cardID, err := parseCardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req payCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cycle, err := h.cycles.PayCycle(r.Context(), cardID, req.Month, req.Year, req.FundingAccountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCycleResponse(cycle))
}

func parseCardID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("cardID"), 10, 64)
}

func parseDateParam(r *http.Request, name string) (core.Date, error) {
	raw := r.URL.Query().Get(name)
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return core.Date{}, err
	}
	return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

func parseMonthYear(r *http.Request) (month, year int, err error) {
	if month, err = strconv.Atoi(r.URL.Query().Get("month")); err != nil {
		return 0, 0, err
	}
	if year, err = strconv.Atoi(r.URL.Query().Get("year")); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}
