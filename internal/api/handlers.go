package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/susu3304/partypay/internal/export"
	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/ledger"
	"github.com/susu3304/partypay/internal/session"
	"github.com/susu3304/partypay/internal/settlement"
	"github.com/susu3304/partypay/internal/wizard"
)

type calculationView struct {
	Phase  string             `json:"phase"`
	Result *settlement.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

type sessionView struct {
	ID            string          `json:"id"`
	Language      string          `json:"language"`
	Direction     string          `json:"direction"`
	Step          int             `json:"step"`
	StepName      string          `json:"step_name"`
	CanProceed    bool            `json:"can_proceed"`
	Ledger        ledger.Ledger   `json:"ledger"`
	TotalExpenses float64         `json:"total_expenses"`
	TotalPaid     float64         `json:"total_paid"`
	Balanced      bool            `json:"balanced"`
	Calculation   calculationView `json:"calculation"`
}

func view(s *session.Session) sessionView {
	lang := s.Language()
	step := s.Wizard.Current()
	l := s.Ledger.Snapshot()
	st := s.Calc.State()
	cv := calculationView{Phase: st.Phase.String(), Result: st.Result}
	if st.ErrorKey != "" {
		cv.Error = i18n.T(lang, st.ErrorKey)
	}
	return sessionView{
		ID:            s.ID,
		Language:      lang.String(),
		Direction:     i18n.Direction(lang),
		Step:          int(step),
		StepName:      i18n.T(lang, step.String()),
		CanProceed:    s.Wizard.CanProceed(step),
		Ledger:        l,
		TotalExpenses: ledger.TotalExpenses(l),
		TotalPaid:     ledger.TotalPaid(l),
		Balanced:      ledger.IsBalanced(l),
		Calculation:   cv,
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	lang := a.defaultLang
	if body.Language != "" {
		lang = i18n.Parse(body.Language)
	}

	sess, _ := a.sessions.Create("", lang)
	token, err := a.issueToken(sess.ID)
	if err != nil {
		a.logger.Error("issue session token", zap.Error(err))
		a.sessions.Dispose(sess.ID)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":    sess.ID,
		"token": token,
	})
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view(sessionFrom(r)))
}

func (a *API) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := a.sessions.Dispose(sess.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		http.Error(w, "failed to dispose session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var body struct {
		Language string `json:"language"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, sess.Language(), "invalidInput")
		return
	}
	sess.SetLanguage(i18n.Parse(body.Language))
	writeJSON(w, http.StatusOK, view(sess))
}

// Ledger

func (a *API) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, sess.Language(), "invalidInput")
		return
	}
	status := http.StatusOK
	if sess.Ledger.AddParticipant(body.Name) {
		status = http.StatusCreated
	}
	writeJSON(w, status, view(sess))
}

func (a *API) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Ledger.RemoveParticipant(mux.Vars(r)["name"])
	writeJSON(w, http.StatusOK, view(sess))
}

type entryRequest struct {
	Item      string      `json:"item"`
	Name      string      `json:"name"`
	Amount    json.Number `json:"amount"`
	Consumers []string    `json:"consumers"`
}

func (a *API) decodeEntry(w http.ResponseWriter, r *http.Request) (entryRequest, float64, bool) {
	sess := sessionFrom(r)
	var body entryRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, sess.Language(), "invalidInput")
		return body, 0, false
	}
	amount, err := ledger.ParseAmount(body.Amount.String())
	if err != nil {
		writeValidation(w, sess, err)
		return body, 0, false
	}
	return body, amount, true
}

func writeValidation(w http.ResponseWriter, sess *session.Session, err error) {
	field := ""
	var ve *ledger.ValidationError
	if errors.As(err, &ve) {
		field = ve.Field
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
		"error": i18n.T(sess.Language(), "invalidInput"),
		"key":   "invalidInput",
		"field": field,
	})
}

func (a *API) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	body, amount, ok := a.decodeEntry(w, r)
	if !ok {
		return
	}
	err := sess.Ledger.AddExpense(ledger.Expense{Item: body.Item, Amount: amount, Consumers: body.Consumers})
	if err != nil {
		writeValidation(w, sess, err)
		return
	}
	writeJSON(w, http.StatusCreated, view(sess))
}

func (a *API) handleAddPayer(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	body, amount, ok := a.decodeEntry(w, r)
	if !ok {
		return
	}
	if err := sess.Ledger.AddPayer(ledger.Payer{Name: body.Name, Amount: amount}); err != nil {
		writeValidation(w, sess, err)
		return
	}
	writeJSON(w, http.StatusCreated, view(sess))
}

func (a *API) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	a.removeAt(w, r, sessionFrom(r).Ledger.RemoveExpense)
}

func (a *API) handleRemovePayer(w http.ResponseWriter, r *http.Request) {
	a.removeAt(w, r, sessionFrom(r).Ledger.RemovePayer)
}

func (a *API) removeAt(w http.ResponseWriter, r *http.Request, remove func(int) bool) {
	sess := sessionFrom(r)
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil || !remove(index) {
		writeError(w, http.StatusNotFound, sess.Language(), "nothingChanged")
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

// Wizard

func (a *API) handleNext(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var blocked *wizard.BlockedError
	if err := sess.Wizard.Next(); errors.As(err, &blocked) {
		writeError(w, http.StatusConflict, sess.Language(), blocked.MessageKey)
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (a *API) handlePrevious(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Wizard.Previous()
	writeJSON(w, http.StatusOK, view(sess))
}

func (a *API) handleGoTo(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	step, err := strconv.Atoi(mux.Vars(r)["step"])
	if err != nil || !sess.Wizard.GoTo(wizard.Step(step)) {
		writeError(w, http.StatusConflict, sess.Language(), "stepUnavailable")
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

// Calculation and export

func (a *API) handleCalculate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	lang := sess.Language()
	res, err := sess.Calc.Run(r.Context(), sess.Ledger.Snapshot())
	switch {
	case errors.Is(err, settlement.ErrIncompleteLedger):
		writeError(w, http.StatusBadRequest, lang, settlement.GenericErrorKey)
	case errors.Is(err, settlement.ErrInFlight):
		writeError(w, http.StatusConflict, lang, "calculating")
	case err != nil:
		writeError(w, http.StatusBadGateway, lang, settlement.GenericErrorKey)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	lang := sess.Language()
	action, ok := export.ParseAction(mux.Vars(r)["action"])
	if !ok {
		http.Error(w, "unknown export action", http.StatusNotFound)
		return
	}

	// The response body is the download. Clipboard and share do not exist
	// over HTTP, so both degrade to it.
	var delivered *export.Image
	channels := export.Channels{
		Download: export.StrategyFunc(func(_ context.Context, img export.Image) error {
			delivered = &img
			return nil
		}),
		Clipboard: export.Unavailable{},
		Share:     export.Unavailable{},
	}

	report := sess.Export.Run(r.Context(), action, channels)
	switch report.Outcome {
	case export.Delivered:
		w.Header().Set("Content-Type", delivered.MIME)
		w.Header().Set("Content-Disposition", `attachment; filename="`+delivered.Name+`"`)
		w.Header().Set("X-Notice", report.Notice.Key)
		w.Header().Set("X-Export-Fallback", strconv.FormatBool(report.FellBack))
		w.WriteHeader(http.StatusOK)
		w.Write(delivered.Data)
	case export.Busy:
		writeError(w, http.StatusConflict, lang, report.Notice.Key)
	case export.Canceled:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusInternalServerError, lang, report.Notice.Key)
	}
}
