package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// SettlementRecorder observes settlement computations.
type SettlementRecorder interface {
	ObserveSettlement(outcome string, transfers int, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSettlement(string, int, time.Duration) {}

// SettlementService computes who owes whom in a group.
type SettlementService struct {
	store    storage.Store
	recorder SettlementRecorder
}

// NewSettlementService creates a SettlementService. recorder may be nil.
func NewSettlementService(store storage.Store, recorder SettlementRecorder) *SettlementService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &SettlementService{store: store, recorder: recorder}
}

// GetSettlements loads the group and the period's entries, then runs the
// settlement engine over them. The caller must be a member.
func (s *SettlementService) GetSettlements(ctx context.Context, caller auth.Identity, groupID string, period calculator.Period) (*SettlementReport, error) {
	if err := period.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start := time.Now()

	var (
		group    *models.Group
		expenses []*models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, err = s.store.GetGroup(gctx, groupID)
		if err != nil {
			return fromStore(err, "group "+groupID)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(gctx, groupID, filterFor(period))
		if err != nil {
			return fromStore(err, "list expenses")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := checkMember(group, caller); err != nil {
		return nil, err
	}

	result, err := calculator.Settle(toEntries(expenses), group.Members)
	if err != nil {
		s.recorder.ObserveSettlement(outcomeOf(err), 0, time.Since(start))
		slog.Error("Settlement computation failed",
			"group_id", groupID,
			"period", period.String(),
			"error", err,
		)
		return nil, fmt.Errorf("settle group %s: %w", groupID, err)
	}

	users, err := resolveUsers(ctx, s.store, group.Members)
	if err != nil {
		return nil, err
	}

	report := &SettlementReport{
		GroupID:      groupID,
		Period:       period,
		UserBalances: make([]UserBalance, len(result.Balances)),
		Settlements:  make([]Settlement, len(result.Transfers)),
		Summary:      result.Summary,
	}
	for i, b := range result.Balances {
		report.UserBalances[i] = UserBalance{User: users[b.MemberID], Paid: b.Paid, Share: b.Share, Balance: b.Net}
	}
	for i, t := range result.Transfers {
		report.Settlements[i] = Settlement{From: users[t.From], To: users[t.To], Amount: t.Amount}
	}

	elapsed := time.Since(start)
	s.recorder.ObserveSettlement(metrics.OutcomeOK, len(report.Settlements), elapsed)
	slog.Info("Settlements computed",
		"group_id", groupID,
		"period", period.String(),
		"entries", len(expenses),
		"members", len(group.Members),
		"transfers", len(report.Settlements),
		"duration_ms", elapsed.Milliseconds(),
	)
	return report, nil
}

func outcomeOf(err error) string {
	var unknown *calculator.UnknownMemberError
	var invariant *calculator.InvariantViolationError
	switch {
	case errors.As(err, &unknown):
		return metrics.OutcomeUnknownMember
	case errors.As(err, &invariant):
		return metrics.OutcomeInvariant
	case errors.Is(err, calculator.ErrTotalOverflow):
		return metrics.OutcomeOverflow
	default:
		return metrics.OutcomeError
	}
}
