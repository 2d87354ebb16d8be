// Package connectapi serves settlement queries over Connect RPC.
package connectapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/service"
)

const (
	SettlementServiceGetSettlementsProcedure = "/settleup.v1.SettlementService/GetSettlements"
	ExpenseServiceGetMonthlySummaryProcedure = "/settleup.v1.ExpenseService/GetMonthlySummary"
)

// Server implements the RPC procedures on top of the services.
type Server struct {
	settlements *service.SettlementService
	expenses    *service.ExpenseService
	now         func() time.Time
}

// NewServer creates a new Server.
func NewServer(settlements *service.SettlementService, expenses *service.ExpenseService) *Server {
	return &Server{settlements: settlements, expenses: expenses, now: time.Now}
}

// Handlers returns every procedure path with its handler. opts are applied
// to each handler after the JSON codec.
func (s *Server) Handlers(opts ...connect.HandlerOption) map[string]http.Handler {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	return map[string]http.Handler{
		SettlementServiceGetSettlementsProcedure: connect.NewUnaryHandler(
			SettlementServiceGetSettlementsProcedure, s.GetSettlements, opts...,
		),
		ExpenseServiceGetMonthlySummaryProcedure: connect.NewUnaryHandler(
			ExpenseServiceGetMonthlySummaryProcedure, s.GetMonthlySummary, opts...,
		),
	}
}

// GetSettlements computes balances and transfers for a group.
func (s *Server) GetSettlements(ctx context.Context, req *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	period, err := service.ResolvePeriod(optional(req.Msg.Month), optional(req.Msg.Year), s.now(), service.DefaultAllTime)
	if err != nil {
		return nil, toConnectError(err)
	}

	report, err := s.settlements.GetSettlements(ctx, caller, req.Msg.GroupID, period)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &GetSettlementsResponse{
		GroupID:      report.GroupID,
		Period:       Period{Month: period.Month, Year: period.Year},
		UserBalances: make([]UserBalance, len(report.UserBalances)),
		Settlements:  make([]Transfer, len(report.Settlements)),
		Summary:      toSummary(report.Summary),
	}
	for i, b := range report.UserBalances {
		resp.UserBalances[i] = UserBalance{
			Party:        toParty(b.User),
			Email:        b.User.Email,
			PaidCents:    int64(b.Paid),
			ShareCents:   int64(b.Share),
			BalanceCents: int64(b.Balance),
		}
	}
	for i, t := range report.Settlements {
		resp.Settlements[i] = Transfer{From: toParty(t.From), To: toParty(t.To), AmountCents: int64(t.Amount)}
	}
	return connect.NewResponse(resp), nil
}

// GetMonthlySummary totals a group's entries for one month (the current
// one by default).
func (s *Server) GetMonthlySummary(ctx context.Context, req *connect.Request[GetMonthlySummaryRequest]) (*connect.Response[GetMonthlySummaryResponse], error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	period, err := service.ResolvePeriod(optional(req.Msg.Month), optional(req.Msg.Year), s.now(), service.DefaultCurrentMonth)
	if err != nil {
		return nil, toConnectError(err)
	}

	report, err := s.expenses.Monthly(ctx, caller, req.Msg.GroupID, period)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetMonthlySummaryResponse{
		GroupID: req.Msg.GroupID,
		Period:  Period{Month: period.Month, Year: period.Year},
		Summary: toSummary(report.Summary),
	}), nil
}

func identity(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Identity{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

func optional(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func toParty(u *models.User) Party {
	return Party{UserID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

func toSummary(s calculator.Summary) Summary {
	return Summary{
		TotalExpenseCents: int64(s.TotalExpense),
		TotalIncomeCents:  int64(s.TotalIncome),
		NetAmountCents:    int64(s.NetAmount),
		Count:             s.Count,
	}
}

// toConnectError maps service errors onto Connect codes. Internal failures
// keep their detail out of the response.
func toConnectError(err error) error {
	var (
		unknown   *calculator.UnknownMemberError
		invariant *calculator.InvariantViolationError
	)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, service.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, service.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.As(err, &unknown):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, calculator.ErrTotalOverflow):
		return connect.NewError(connect.CodeOutOfRange, err)
	case errors.As(err, &invariant):
		slog.Error("Settlement invariant violated", "error", err)
		return connect.NewError(connect.CodeInternal, errors.New("failed to compute settlements"))
	default:
		slog.Error("RPC failed", "error", err)
		return connect.NewError(connect.CodeInternal, errors.New("internal server error"))
	}
}
