package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths of the LedgerService.
const (
	GetBalancesProcedure        = "/" + LedgerServiceName + "/GetBalances"
	GetSimplifiedDebtsProcedure = "/" + LedgerServiceName + "/GetSimplifiedDebts"
	RecordExpenseProcedure      = "/" + LedgerServiceName + "/RecordExpense"
	RecordSettlementProcedure   = "/" + LedgerServiceName + "/RecordSettlement"
)

// LedgerService implements the Connect LedgerService on top of the engine.
type LedgerService struct {
	engine *ledger.Engine
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(engine *ledger.Engine) *LedgerService {
	return &LedgerService{engine: engine}
}

// GetBalances returns every member's net balance.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	report, err := s.engine.GetBalances(ctx, middleware.PrincipalFrom(ctx), req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetBalancesResponse{
		GroupID:  report.GroupID,
		Version:  report.Version,
		Balances: balancesToMsg(report.Balances),
	}), nil
}

// GetSimplifiedDebts returns the payments that would settle the group.
func (s *LedgerService) GetSimplifiedDebts(ctx context.Context, req *connect.Request[GetSimplifiedDebtsRequest]) (*connect.Response[GetSimplifiedDebtsResponse], error) {
	slog.Info("GetSimplifiedDebts request received", "group_id", req.Msg.GroupID)

	debts, err := s.engine.GetSimplifiedDebts(ctx, middleware.PrincipalFrom(ctx), req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetSimplifiedDebtsResponse{Debts: debtsToMsg(debts)}), nil
}

// RecordExpense resolves the split and appends the expense.
func (s *LedgerService) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error) {
	msg := req.Msg
	slog.Info("RecordExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount,
		"split_type", msg.SplitType,
	)

	shares, err := ledger.ResolveShares(ledger.SplitRequest{
		Type:         ledger.SplitType(msg.SplitType),
		Amount:       msg.Amount,
		PayerID:      msg.PayerID,
		Participants: msg.Participants,
		Shares:       sharesFromMsg(msg.Shares),
		Weights:      weightsFromMsg(msg.Weights),
		Items:        itemsFromMsg(msg.Items),
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	expense := &models.Expense{
		GroupID:     msg.GroupID,
		Description: msg.Description,
		Amount:      msg.Amount,
		PayerID:     msg.PayerID,
		Shares:      shares,
	}
	if err := s.engine.RecordExpense(ctx, middleware.PrincipalFrom(ctx), expense); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&RecordExpenseResponse{Expense: expenseToMsg(expense)}), nil
}

// RecordSettlement appends a settlement.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	msg := req.Msg
	slog.Info("RecordSettlement request received",
		"group_id", msg.GroupID,
		"from", msg.FromMemberID,
		"to", msg.ToMemberID,
		"amount", msg.Amount,
	)

	settlement := &models.Settlement{
		GroupID:      msg.GroupID,
		FromMemberID: msg.FromMemberID,
		ToMemberID:   msg.ToMemberID,
		Amount:       msg.Amount,
		Note:         msg.Note,
	}
	if err := s.engine.RecordSettlement(ctx, middleware.PrincipalFrom(ctx), settlement); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&RecordSettlementResponse{Settlement: settlementToMsg(settlement)}), nil
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	getBalances := connect.NewUnaryHandler(GetBalancesProcedure, svc.GetBalances, opts...)
	getSimplifiedDebts := connect.NewUnaryHandler(GetSimplifiedDebtsProcedure, svc.GetSimplifiedDebts, opts...)
	recordExpense := connect.NewUnaryHandler(RecordExpenseProcedure, svc.RecordExpense, opts...)
	recordSettlement := connect.NewUnaryHandler(RecordSettlementProcedure, svc.RecordSettlement, opts...)

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GetBalancesProcedure:
			getBalances.ServeHTTP(w, r)
		case GetSimplifiedDebtsProcedure:
			getSimplifiedDebts.ServeHTTP(w, r)
		case RecordExpenseProcedure:
			recordExpense.ServeHTTP(w, r)
		case RecordSettlementProcedure:
			recordSettlement.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
