package rest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/service"
)

// Handler serves the REST API.
type Handler struct {
	users       *service.UserService
	groups      *service.GroupService
	expenses    *service.ExpenseService
	settlements *service.SettlementService
	now         func() time.Time
}

// NewHandler creates a Handler over the given services.
func NewHandler(users *service.UserService, groups *service.GroupService, expenses *service.ExpenseService, settlements *service.SettlementService) *Handler {
	return &Handler{
		users:       users,
		groups:      groups,
		expenses:    expenses,
		settlements: settlements,
		now:         time.Now,
	}
}

// caller returns the identity installed by the auth middleware.
func caller(r *http.Request) (auth.Identity, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Identity{}, auth.ErrMissingToken
	}
	return id, nil
}

// --- users ---

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Me(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"user": toUserJSON(user)})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the
// client just forgets its token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "Logout successful")
}

// SearchUsers handles GET /users/search?email=.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.users.Search(r.Context(), id, r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"users": toUsersJSON(users)})
}

// --- groups ---

type groupRequest struct {
	Name string `json:"name"`
}

type memberRequest struct {
	Email string `json:"email"`
}

// CreateGroup handles POST /groups.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.groups.Create(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"group": toGroupJSON(view)})
}

// ListGroups handles GET /groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.groups.List(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	groups := make([]groupJSON, len(views))
	for i, v := range views {
		groups[i] = toGroupJSON(v)
	}
	writeData(w, http.StatusOK, map[string]any{"groups": groups})
}

// GetGroup handles GET /groups/{groupId}.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.groups.Get(r.Context(), id, mux.Vars(r)["groupId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"group": toGroupJSON(view)})
}

// UpdateGroup handles PUT /groups/{groupId}.
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.groups.Rename(r.Context(), id, mux.Vars(r)["groupId"], req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"group": toGroupJSON(view)})
}

// DeleteGroup handles DELETE /groups/{groupId}.
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.groups.Delete(r.Context(), id, mux.Vars(r)["groupId"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Group deleted")
}

// AddMember handles POST /groups/{groupId}/members.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req memberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.groups.AddMember(r.Context(), id, mux.Vars(r)["groupId"], req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"group": toGroupJSON(view)})
}

// RemoveMember handles DELETE /groups/{groupId}/members/{userId}.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	vars := mux.Vars(r)
	view, err := h.groups.RemoveMember(r.Context(), id, vars["groupId"], vars["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"group": toGroupJSON(view)})
}

// --- expenses ---

type createExpenseRequest struct {
	GroupID string           `json:"groupId"`
	Title   string           `json:"title"`
	Amount  *decimal.Decimal `json:"amount"`
	Type    string           `json:"type"`
	Date    string           `json:"date"`
}

type updateExpenseRequest struct {
	Title  *string          `json:"title"`
	Amount *decimal.Decimal `json:"amount"`
	Type   *string          `json:"type"`
	Date   *string          `json:"date"`
}

// CreateExpense handles POST /expenses.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	v := &service.ValidationError{}
	in := service.ExpenseInput{
		GroupID: req.GroupID,
		Title:   req.Title,
		Type:    models.ExpenseType(strings.ToUpper(req.Type)),
	}
	if req.Amount == nil {
		v.Fields = append(v.Fields, service.FieldError{Field: "amount", Message: "is required"})
	} else {
		in.Amount = parseAmount(v, *req.Amount)
	}
	if req.Date != "" {
		in.Date = parseDate(v, req.Date)
	}
	if len(v.Fields) > 0 {
		writeError(w, r, v)
		return
	}

	view, err := h.expenses.Create(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"expense": toExpenseJSON(view)})
}

// ListExpenses handles GET /expenses/group/{groupId}.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.expenses.List(r.Context(), id, mux.Vars(r)["groupId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"expenses": toExpensesJSON(views)})
}

// MonthlyExpenses handles GET /expenses/group/{groupId}/monthly?month=&year=.
// Without a month or year it reports the current month.
func (h *Handler) MonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := h.period(r, service.DefaultCurrentMonth)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.expenses.Monthly(r.Context(), id, mux.Vars(r)["groupId"], period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"expenses": toExpensesJSON(report.Expenses),
		"summary":  toSummaryJSON(report.Summary),
	})
}

// UpdateExpense handles PUT /expenses/{expenseId}.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	v := &service.ValidationError{}
	patch := service.ExpensePatch{Title: req.Title}
	if req.Amount != nil {
		amount := parseAmount(v, *req.Amount)
		patch.Amount = &amount
	}
	if req.Type != nil {
		t := models.ExpenseType(strings.ToUpper(*req.Type))
		patch.Type = &t
	}
	if req.Date != nil {
		date := parseDate(v, *req.Date)
		patch.Date = &date
	}
	if len(v.Fields) > 0 {
		writeError(w, r, v)
		return
	}

	view, err := h.expenses.Update(r.Context(), id, mux.Vars(r)["expenseId"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"expense": toExpenseJSON(view)})
}

// DeleteExpense handles DELETE /expenses/{expenseId}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.expenses.Delete(r.Context(), id, mux.Vars(r)["expenseId"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, "Expense deleted")
}

// --- settlements ---

// GetSettlements handles GET /settlements/group/{groupId}?month=&year=.
// Without a month or year it settles the group's whole history.
func (h *Handler) GetSettlements(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := h.period(r, service.DefaultAllTime)
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.settlements.GetSettlements(r.Context(), id, mux.Vars(r)["groupId"], period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toSettlementReportJSON(report))
}

// --- parsing ---

func (h *Handler) period(r *http.Request, def service.PeriodDefault) (calculator.Period, error) {
	v := &service.ValidationError{}
	q := r.URL.Query()
	month := optionalInt(v, "month", q.Get("month"))
	year := optionalInt(v, "year", q.Get("year"))
	if len(v.Fields) > 0 {
		return calculator.Period{}, v
	}
	return service.ResolvePeriod(month, year, h.now(), def)
}

func optionalInt(v *service.ValidationError, field, raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Fields = append(v.Fields, service.FieldError{Field: field, Message: "must be an integer"})
		return nil
	}
	return &n
}

func parseAmount(v *service.ValidationError, d decimal.Decimal) money.Cents {
	cents, err := money.FromDecimal(d)
	if err != nil {
		v.Fields = append(v.Fields, service.FieldError{Field: "amount", Message: "is out of range"})
	}
	return cents
}

// dateLayouts are tried in order; the client sends toISOString() output.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

func parseDate(v *service.ValidationError, raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	v.Fields = append(v.Fields, service.FieldError{Field: "date", Message: "must be an ISO-8601 date"})
	return time.Time{}
}
