package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/susu3304/partypay/internal/config"
	"github.com/susu3304/partypay/internal/session"
	"github.com/susu3304/partypay/internal/settlement"
)

type stubCalculator struct {
	err error
}

func (s *stubCalculator) Calculate(context.Context, settlement.Request) (*settlement.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &settlement.Result{
		Table:       []settlement.Row{{Name: "A", Share: 10, Paid: 20, Balance: 10, Status: "creditor"}},
		Settlements: []settlement.Transfer{{From: "B", To: "A", Amount: 10}},
	}, nil
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	calc    *stubCalculator
}

func newTestAPI(t *testing.T) *testAPI {
	calc := &stubCalculator{}
	cfg := &config.Config{JWTSecret: "test-secret", DefaultLanguage: "en"}
	a := New(cfg, session.NewManager(calc, nil, nil), nil)
	return &testAPI{t: t, handler: a.Handler(), calc: calc}
}

func (ta *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	ta.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ta.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ta.handler.ServeHTTP(w, req)
	return w
}

func (ta *testAPI) expect(w *httptest.ResponseRecorder, status int) {
	ta.t.Helper()
	if w.Code != status {
		ta.t.Fatalf("Expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func (ta *testAPI) createSession(lang string) string {
	ta.t.Helper()
	w := ta.do("POST", "/api/sessions", "", map[string]string{"language": lang})
	ta.expect(w, http.StatusCreated)
	var out map[string]string
	json.NewDecoder(w.Body).Decode(&out)
	if out["id"] == "" || out["token"] == "" {
		ta.t.Fatalf("Expected id and token, got %v", out)
	}
	return out["token"]
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) sessionView {
	t.Helper()
	var v sessionView
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func errorKey(w *httptest.ResponseRecorder) string {
	var out map[string]string
	json.NewDecoder(w.Body).Decode(&out)
	return out["key"]
}

func TestWizardFlow(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.createSession("")

	ta.expect(ta.do("POST", "/api/session/participants", token, map[string]string{"name": "A"}), http.StatusCreated)
	ta.expect(ta.do("POST", "/api/session/participants", token, map[string]string{"name": "A"}), http.StatusOK)

	w := ta.do("POST", "/api/session/wizard/next", token, nil)
	ta.expect(w, http.StatusConflict)
	if key := errorKey(w); key != "addParticipantsFirst" {
		t.Errorf("Expected addParticipantsFirst, got %q", key)
	}

	ta.expect(ta.do("POST", "/api/session/participants", token, map[string]string{"name": "B"}), http.StatusCreated)
	v := decodeView(t, ta.do("POST", "/api/session/wizard/next", token, nil))
	if v.Step != 1 || v.StepName != "Expenses" {
		t.Errorf("Expected step 1 Expenses, got %d %s", v.Step, v.StepName)
	}

	ta.expect(ta.do("POST", "/api/session/expenses", token, map[string]any{
		"item": "Pizza", "amount": 20, "consumers": []string{"A", "B"},
	}), http.StatusCreated)
	w = ta.do("POST", "/api/session/payers", token, map[string]any{"name": "A", "amount": "20"})
	ta.expect(w, http.StatusCreated)
	v = decodeView(t, w)
	if v.TotalExpenses != 20 || v.TotalPaid != 20 || !v.Balanced {
		t.Errorf("Expected balanced 20/20, got %+v", v)
	}

	ta.expect(ta.do("POST", "/api/session/wizard/goto/3", token, nil), http.StatusOK)

	w = ta.do("POST", "/api/session/calculate", token, nil)
	ta.expect(w, http.StatusOK)
	var res settlement.Result
	json.NewDecoder(w.Body).Decode(&res)
	if len(res.Settlements) != 1 {
		t.Errorf("Expected one settlement, got %v", res.Settlements)
	}

	v = decodeView(t, ta.do("GET", "/api/session", token, nil))
	if v.Calculation.Phase != "succeeded" || v.Calculation.Result == nil {
		t.Errorf("Expected succeeded calculation, got %+v", v.Calculation)
	}
}

func TestExport(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.createSession("fa")

	w := ta.do("POST", "/api/session/export/download", token, nil)
	ta.expect(w, http.StatusInternalServerError)
	if key := errorKey(w); key != "error" {
		t.Errorf("Expected generic error without a result, got %q", key)
	}

	for _, name := range []string{"A", "B"} {
		ta.do("POST", "/api/session/participants", token, map[string]string{"name": name})
	}
	ta.do("POST", "/api/session/expenses", token, map[string]any{"item": "Pizza", "amount": 20, "consumers": []string{"A", "B"}})
	ta.do("POST", "/api/session/payers", token, map[string]any{"name": "A", "amount": 20})
	ta.expect(ta.do("POST", "/api/session/calculate", token, nil), http.StatusOK)

	tests := []struct {
		action   string
		fallback string
	}{
		{"download", "false"},
		{"copy", "true"},
		{"share", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			w := ta.do("POST", "/api/session/export/"+tt.action, token, nil)
			ta.expect(w, http.StatusOK)
			if ct := w.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Expected image/png, got %s", ct)
			}
			if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="partypay-result-`) {
				t.Errorf("Unexpected Content-Disposition %q", cd)
			}
			if fb := w.Header().Get("X-Export-Fallback"); fb != tt.fallback {
				t.Errorf("Expected fallback %s, got %s", tt.fallback, fb)
			}
			if n := w.Header().Get("X-Notice"); n != "downloadSuccess" {
				t.Errorf("Expected downloadSuccess, got %s", n)
			}
			if _, err := png.Decode(w.Body); err != nil {
				t.Errorf("Expected a png body: %v", err)
			}
		})
	}

	ta.expect(ta.do("POST", "/api/session/export/print", token, nil), http.StatusNotFound)
}

func TestCalculateErrors(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.createSession("")

	ta.expect(ta.do("POST", "/api/session/calculate", token, nil), http.StatusBadRequest)

	for _, name := range []string{"A", "B"} {
		ta.do("POST", "/api/session/participants", token, map[string]string{"name": name})
	}
	ta.do("POST", "/api/session/expenses", token, map[string]any{"item": "Tea", "amount": 4, "consumers": []string{"B"}})
	ta.do("POST", "/api/session/payers", token, map[string]any{"name": "B", "amount": 4})

	ta.calc.err = errors.New("upstream down")
	ta.expect(ta.do("POST", "/api/session/calculate", token, nil), http.StatusBadGateway)
	v := decodeView(t, ta.do("GET", "/api/session", token, nil))
	if v.Calculation.Phase != "failed" || v.Calculation.Error == "" {
		t.Errorf("Expected failed calculation with message, got %+v", v.Calculation)
	}
}

func TestLedgerValidation(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.createSession("")
	ta.do("POST", "/api/session/participants", token, map[string]string{"name": "A"})

	tests := []struct {
		name  string
		path  string
		body  map[string]any
		field string
	}{
		{"unknown consumer", "/api/session/expenses", map[string]any{"item": "Tea", "amount": 4, "consumers": []string{"Z"}}, "consumers"},
		{"no consumers", "/api/session/expenses", map[string]any{"item": "Tea", "amount": 4}, "consumers"},
		{"blank item", "/api/session/expenses", map[string]any{"item": " ", "amount": 4, "consumers": []string{"A"}}, "item"},
		{"negative amount", "/api/session/expenses", map[string]any{"item": "Tea", "amount": -4, "consumers": []string{"A"}}, "amount"},
		{"missing amount", "/api/session/payers", map[string]any{"name": "A"}, "amount"},
		{"unknown payer", "/api/session/payers", map[string]any{"name": "Z", "amount": 1}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ta.do("POST", tt.path, token, tt.body)
			ta.expect(w, http.StatusUnprocessableEntity)
			var out map[string]string
			json.NewDecoder(w.Body).Decode(&out)
			if out["field"] != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, out["field"])
			}
		})
	}

	ta.expect(ta.do("DELETE", "/api/session/expenses/3", token, nil), http.StatusNotFound)
}

func TestRemoveParticipantCascades(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.createSession("")
	for _, name := range []string{"A", "B"} {
		ta.do("POST", "/api/session/participants", token, map[string]string{"name": name})
	}
	ta.do("POST", "/api/session/expenses", token, map[string]any{"item": "Tea", "amount": 4, "consumers": []string{"B"}})
	ta.do("POST", "/api/session/payers", token, map[string]any{"name": "B", "amount": 4})

	v := decodeView(t, ta.do("DELETE", "/api/session/participants/B", token, nil))
	if len(v.Ledger.Participants) != 1 || len(v.Ledger.Expenses) != 0 || len(v.Ledger.Payers) != 0 {
		t.Errorf("Expected cascade, got %+v", v.Ledger)
	}
}

func TestAuthorization(t *testing.T) {
	ta := newTestAPI(t)

	ta.expect(ta.do("GET", "/api/session", "", nil), http.StatusUnauthorized)
	ta.expect(ta.do("GET", "/api/session", "garbage", nil), http.StatusUnauthorized)

	token := ta.createSession("")
	ta.expect(ta.do("GET", "/api/session", token, nil), http.StatusOK)
	ta.expect(ta.do("DELETE", "/api/session", token, nil), http.StatusNoContent)
	ta.expect(ta.do("GET", "/api/session", token, nil), http.StatusNotFound)
}

func TestLanguage(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.createSession("fa")

	v := decodeView(t, ta.do("GET", "/api/session", token, nil))
	if v.Language != "fa" || v.Direction != "rtl" {
		t.Errorf("Expected fa rtl, got %s %s", v.Language, v.Direction)
	}
	v = decodeView(t, ta.do("POST", "/api/session/language", token, map[string]string{"language": "en"}))
	if v.Language != "en" || v.StepName != "Participants" {
		t.Errorf("Expected en, got %s %s", v.Language, v.StepName)
	}
}

func TestHealth(t *testing.T) {
	ta := newTestAPI(t)
	ta.expect(ta.do("GET", "/healthz", "", nil), http.StatusOK)
	ta.expect(ta.do("GET", "/metrics", "", nil), http.StatusOK)
}
