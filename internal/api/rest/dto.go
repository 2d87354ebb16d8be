package rest

import (
	"time"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/service"
)

// JSON shapes follow the mobile client: Mongo-style "_id" on groups and
// expenses, ISO-8601 timestamps, money as plain numbers in major units.

type userJSON struct {
	ID        string `json:"id"`
	GoogleID  string `json:"googleId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type groupJSON struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	CreatedBy userJSON   `json:"createdBy"`
	Members   []userJSON `json:"members"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}

type expenseJSON struct {
	ID        string   `json:"_id"`
	GroupID   string   `json:"groupId"`
	AddedBy   userJSON `json:"addedBy"`
	Title     string   `json:"title"`
	Amount    float64  `json:"amount"`
	Type      string   `json:"type"`
	SplitType string   `json:"splitType"`
	Date      string   `json:"date"`
	Month     int      `json:"month"`
	Year      int      `json:"year"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

type summaryJSON struct {
	TotalExpense float64 `json:"totalExpense"`
	TotalIncome  float64 `json:"totalIncome"`
	NetAmount    float64 `json:"netAmount"`
	Count        int     `json:"count"`
}

type userBalanceJSON struct {
	UserID  string  `json:"userId"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Avatar  string  `json:"avatar"`
	Paid    float64 `json:"paid"`
	Share   float64 `json:"share"`
	Balance float64 `json:"balance"`
}

type partyJSON struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type settlementJSON struct {
	From   partyJSON `json:"from"`
	To     partyJSON `json:"to"`
	Amount float64   `json:"amount"`
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func unixTime(sec int64) string {
	if sec == 0 {
		return ""
	}
	return isoTime(time.Unix(sec, 0))
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:        u.ID,
		GoogleID:  u.GoogleID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: unixTime(u.CreatedAt),
	}
}

func toUsersJSON(users []*models.User) []userJSON {
	out := make([]userJSON, len(users))
	for i, u := range users {
		out[i] = toUserJSON(u)
	}
	return out
}

func toGroupJSON(v *service.GroupView) groupJSON {
	return groupJSON{
		ID:        v.Group.ID,
		Name:      v.Group.Name,
		CreatedBy: toUserJSON(v.Creator),
		Members:   toUsersJSON(v.Members),
		CreatedAt: unixTime(v.Group.CreatedAt),
		UpdatedAt: unixTime(v.Group.UpdatedAt),
	}
}

func toExpenseJSON(v *service.ExpenseView) expenseJSON {
	e := v.Expense
	return expenseJSON{
		ID:        e.ID,
		GroupID:   e.GroupID,
		AddedBy:   toUserJSON(v.AddedBy),
		Title:     e.Title,
		Amount:    e.Amount.Float(),
		Type:      string(e.Type),
		SplitType: e.SplitType,
		Date:      isoTime(e.Date),
		Month:     e.Month,
		Year:      e.Year,
		CreatedAt: unixTime(e.CreatedAt),
		UpdatedAt: unixTime(e.UpdatedAt),
	}
}

func toExpensesJSON(views []*service.ExpenseView) []expenseJSON {
	out := make([]expenseJSON, len(views))
	for i, v := range views {
		out[i] = toExpenseJSON(v)
	}
	return out
}

func toSummaryJSON(s calculator.Summary) summaryJSON {
	return summaryJSON{
		TotalExpense: s.TotalExpense.Float(),
		TotalIncome:  s.TotalIncome.Float(),
		NetAmount:    s.NetAmount.Float(),
		Count:        s.Count,
	}
}

func toPartyJSON(u *models.User) partyJSON {
	return partyJSON{UserID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

func toSettlementReportJSON(r *service.SettlementReport) map[string]any {
	balances := make([]userBalanceJSON, len(r.UserBalances))
	for i, b := range r.UserBalances {
		balances[i] = userBalanceJSON{
			UserID:  b.User.ID,
			Name:    b.User.Name,
			Email:   b.User.Email,
			Avatar:  b.User.Avatar,
			Paid:    b.Paid.Float(),
			Share:   b.Share.Float(),
			Balance: b.Balance.Float(),
		}
	}
	settlements := make([]settlementJSON, len(r.Settlements))
	for i, s := range r.Settlements {
		settlements[i] = settlementJSON{
			From:   toPartyJSON(s.From),
			To:     toPartyJSON(s.To),
			Amount: s.Amount.Float(),
		}
	}
	return map[string]any{
		"userBalances": balances,
		"settlements":  settlements,
	}
}
