package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scadenze/internal/amqp"
	"scadenze/internal/cache"
	"scadenze/internal/core"
	"scadenze/internal/log"
	"scadenze/internal/services"
)

type fakeStore struct {
	obligations []core.RecurringObligation
	profiles    map[int64]core.CardBillingProfile
	txs         []core.CardTransaction
	parcels     []core.Parcel
	paid        map[[3]int64]bool
}

func (f *fakeStore) ListActiveObligations(ctx context.Context) ([]core.RecurringObligation, error) {
	return f.obligations, nil
}

func (f *fakeStore) GetCardProfile(ctx context.Context, cardID int64) (core.CardBillingProfile, error) {
	p, ok := f.profiles[cardID]
	if !ok {
		return core.CardBillingProfile{}, core.ErrCardNotFound
	}
	return p, nil
}

func (f *fakeStore) ListCardProfiles(ctx context.Context) ([]core.CardBillingProfile, error) {
	var out []core.CardBillingProfile
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ListCardTransactions(ctx context.Context, cardID int64, from, to core.Date) ([]core.CardTransaction, error) {
	var out []core.CardTransaction
	for _, tx := range f.txs {
		if tx.CardID == cardID && !tx.Date.Before(from.Time) && !tx.Date.After(to.Time) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCardParcels(ctx context.Context, cardID int64) ([]core.Parcel, error) {
	return f.parcels, nil
}

func (f *fakeStore) IsCyclePaid(ctx context.Context, cardID int64, month, year int) (bool, error) {
	return f.paid[[3]int64{cardID, int64(month), int64(year)}], nil
}

func (f *fakeStore) RecordCyclePayment(ctx context.Context, cardID int64, month, year int, fundingAccountID int64) error {
	key := [3]int64{cardID, int64(month), int64(year)}
	if f.paid[key] {
		return core.ErrCycleAlreadyPaid
	}
	if f.paid == nil {
		f.paid = make(map[[3]int64]bool)
	}
	f.paid[key] = true
	return nil
}

func (f *fakeStore) PublishCyclePaid(ctx context.Context, msg *amqp.CyclePaidMessage) error {
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeStore) {
	t.Helper()
	store := &fakeStore{
		obligations: []core.RecurringObligation{{
			ID:          1,
			Description: "rent",
			Amount:      core.Money{Cents: 80000},
			Direction:   core.Out,
			Frequency:   core.Monthly,
			StartDate:   core.NewDate(2023, 1, 5),
			AnchorDate:  core.NewDate(2024, 1, 5),
			Active:      true,
		}},
		profiles: map[int64]core.CardBillingProfile{
			7: {CardID: 7, ClosingDay: 10, DueDay: 5},
		},
		txs: []core.CardTransaction{
			{CardID: 7, Date: core.NewDate(2024, 2, 15), Amount: core.Money{Cents: 3000}},
			{CardID: 7, Date: core.NewDate(2024, 3, 5), Amount: core.Money{Cents: -500}},
		},
		parcels: []core.Parcel{
			{CardID: 7, ParentPurchaseID: 1, InstallmentIndex: 1, TotalInstallments: 3,
				DueDate: core.NewDate(2024, 3, 12), Amount: core.Money{Cents: 2000}},
		},
		paid: make(map[[3]int64]bool),
	}

	logger := log.New(log.DefaultConfig())
	projections := services.NewProjectionService(store,
		cache.NewMemo[[]core.Occurrence](16, time.Minute), logger)
	cycles := services.NewCycleService(store, store, store, store,
		cache.NewMemo[core.BillingCycle](16, time.Minute), logger)

	mux := http.NewServeMux()
	NewHandler(projections, cycles, logger).Routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, store
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	var body map[string]string
	getJSON(t, ts.URL+"/healthz", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestGetProjections(t *testing.T) {
	ts, _ := newTestServer(t)

	var body projectionResponse
	getJSON(t, ts.URL+"/api/projections?from=2024-03-01&to=2024-04-30", http.StatusOK, &body)

	if len(body.Occurrences) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(body.Occurrences))
	}
	if body.Occurrences[0].Date != "2024-03-05" || body.Occurrences[1].Date != "2024-04-05" {
		t.Errorf("dates = %s, %s", body.Occurrences[0].Date, body.Occurrences[1].Date)
	}
	if body.Occurrences[0].AmountCents != 80000 || body.Occurrences[0].Direction != "out" {
		t.Errorf("occurrence = %+v", body.Occurrences[0])
	}
}

func TestGetProjections_BadInput(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing params", ""},
		{"malformed date", "?from=yesterday&to=2024-04-30"},
		{"inverted window", "?from=2024-04-30&to=2024-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getJSON(t, ts.URL+"/api/projections"+tt.query, http.StatusBadRequest, nil)
		})
	}
}

func TestGetCycle(t *testing.T) {
	ts, _ := newTestServer(t)

	var body cycleResponse
	getJSON(t, ts.URL+"/api/cards/7/cycle?month=3&year=2024", http.StatusOK, &body)

	if body.PeriodStart != "2024-02-11" || body.PeriodEnd != "2024-03-10" {
		t.Errorf("period = %s..%s", body.PeriodStart, body.PeriodEnd)
	}
	if body.DueDate != "2024-04-05" {
		t.Errorf("due date = %s", body.DueDate)
	}
	if body.ProcessedCents != 3500 || body.PendingCents != 2000 || body.TotalCents != 5500 {
		t.Errorf("totals = %d/%d/%d", body.ProcessedCents, body.PendingCents, body.TotalCents)
	}
}

func TestGetCycle_Errors(t *testing.T) {
	ts, _ := newTestServer(t)
	getJSON(t, ts.URL+"/api/cards/999/cycle?month=3&year=2024", http.StatusNotFound, nil)
	getJSON(t, ts.URL+"/api/cards/7/cycle?month=13&year=2024", http.StatusBadRequest, nil)
	getJSON(t, ts.URL+"/api/cards/notanumber/cycle?month=3&year=2024", http.StatusBadRequest, nil)
}

func TestGetCycle_ActiveFallback(t *testing.T) {
	ts, _ := newTestServer(t)

	var body cycleResponse
	getJSON(t, ts.URL+"/api/cards/7/cycle", http.StatusOK, &body)
	if body.Month < 1 || body.Month > 12 {
		t.Errorf("active cycle month = %d", body.Month)
	}
	if body.CardID != 7 {
		t.Errorf("card id = %d", body.CardID)
	}
}

func TestPayCycle(t *testing.T) {
	ts, _ := newTestServer(t)
	url := ts.URL + "/api/cards/7/cycle/pay"
	payload := `{"month":3,"year":2024,"funding_account_id":42}`

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body cycleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "paid" {
		t.Errorf("status = %s, want paid", body.Status)
	}

	// A second payment for the same cycle conflicts.
	resp2, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("second POST: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusConflict {
		t.Errorf("second pay status = %d, want 409", resp2.StatusCode)
	}
}

func TestPayCycle_BadBody(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/cards/7/cycle/pay", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
