package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

type testServer struct {
	client  *LedgerServiceClient
	jwt     *auth.JWTManager
	groupID string
}

// setupLedgerTestServer serves the LedgerService over a temp SQLite store
// seeded with one group of alice, bob and charlie.
func setupLedgerTestServer(t *testing.T) *testServer {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	group := &models.Group{
		Name: "Flat",
		Type: models.GroupTypeHome,
		Members: []models.Member{
			{ID: "alice", DisplayName: "Alice"},
			{ID: "bob", DisplayName: "Bob"},
			{ID: "charlie", DisplayName: "Charlie"},
		},
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	jwtManager := auth.NewJWTManager("service-test-secret", time.Hour)
	engine := ledger.New(store, ledger.WithCache(16, time.Minute))

	path, handler := NewLedgerServiceHandler(NewLedgerService(engine),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor()),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{
		client:  NewLedgerServiceClient(http.DefaultClient, server.URL),
		jwt:     jwtManager,
		groupID: group.ID,
	}
}

func withToken[T any](t *testing.T, s *testServer, userID string, msg *T) *connect.Request[T] {
	t.Helper()
	token, err := s.jwt.Generate(userID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func codeOf(t *testing.T, err error) connect.Code {
	t.Helper()
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T (%v)", err, err)
	}
	return connectErr.Code()
}

func TestRecordExpense_EqualSplit(t *testing.T) {
	s := setupLedgerTestServer(t)
	ctx := context.Background()

	resp, err := s.client.RecordExpense(ctx, withToken(t, s, "alice", &RecordExpenseRequest{
		GroupID:      s.groupID,
		Description:  "Groceries",
		Amount:       3000,
		PayerID:      "alice",
		SplitType:    "equal",
		Participants: []string{"alice", "bob", "charlie"},
	}))
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}

	expense := resp.Msg.Expense
	if expense.ID == "" {
		t.Error("expected generated expense ID")
	}
	if expense.CreatedBy != "alice" {
		t.Errorf("created_by: expected 'alice', got '%s'", expense.CreatedBy)
	}
	if len(expense.Shares) != 3 {
		t.Fatalf("shares: expected 3, got %d", len(expense.Shares))
	}
	for _, share := range expense.Shares {
		if share.Amount != 1000 {
			t.Errorf("share of %s: expected 1000, got %d", share.MemberID, share.Amount)
		}
	}

	balances, err := s.client.GetBalances(ctx, withToken(t, s, "bob", &GetBalancesRequest{GroupID: s.groupID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if balances.Msg.Version != 1 {
		t.Errorf("version: expected 1, got %d", balances.Msg.Version)
	}

	want := map[string]int64{"alice": 2000, "bob": -1000, "charlie": -1000}
	if len(balances.Msg.Balances) != len(want) {
		t.Fatalf("balances: expected %d, got %d", len(want), len(balances.Msg.Balances))
	}
	for _, b := range balances.Msg.Balances {
		if b.NetAmount != want[b.MemberID] {
			t.Errorf("balance of %s: expected %d, got %d", b.MemberID, want[b.MemberID], b.NetAmount)
		}
	}
}

func TestSettlementClearsDebts(t *testing.T) {
	s := setupLedgerTestServer(t)
	ctx := context.Background()

	_, err := s.client.RecordExpense(ctx, withToken(t, s, "alice", &RecordExpenseRequest{
		GroupID:     s.groupID,
		Description: "Dinner",
		Amount:      6000,
		PayerID:     "alice",
		Shares: []Share{
			{MemberID: "alice", Amount: 2000},
			{MemberID: "bob", Amount: 2000},
			{MemberID: "charlie", Amount: 2000},
		},
	}))
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}

	debts, err := s.client.GetSimplifiedDebts(ctx, withToken(t, s, "charlie", &GetSimplifiedDebtsRequest{GroupID: s.groupID}))
	if err != nil {
		t.Fatalf("GetSimplifiedDebts failed: %v", err)
	}
	if len(debts.Msg.Debts) != 2 {
		t.Fatalf("debts: expected 2, got %d", len(debts.Msg.Debts))
	}
	for _, d := range debts.Msg.Debts {
		if d.To != "alice" || d.Amount != 2000 {
			t.Errorf("unexpected debt %+v", d)
		}
	}

	for _, from := range []string{"bob", "charlie"} {
		resp, err := s.client.RecordSettlement(ctx, withToken(t, s, from, &RecordSettlementRequest{
			GroupID:      s.groupID,
			FromMemberID: from,
			ToMemberID:   "alice",
			Amount:       2000,
			Note:         "paid back",
		}))
		if err != nil {
			t.Fatalf("RecordSettlement failed: %v", err)
		}
		if resp.Msg.Settlement.ID == "" {
			t.Error("expected generated settlement ID")
		}
	}

	debts, err = s.client.GetSimplifiedDebts(ctx, withToken(t, s, "alice", &GetSimplifiedDebtsRequest{GroupID: s.groupID}))
	if err != nil {
		t.Fatalf("GetSimplifiedDebts failed: %v", err)
	}
	if len(debts.Msg.Debts) != 0 {
		t.Errorf("expected no debts after settling, got %+v", debts.Msg.Debts)
	}
}

func TestRecordExpense_Validation(t *testing.T) {
	s := setupLedgerTestServer(t)

	_, err := s.client.RecordExpense(context.Background(), withToken(t, s, "alice", &RecordExpenseRequest{
		GroupID:     s.groupID,
		Description: "Taxi",
		Amount:      1000,
		PayerID:     "alice",
		Shares: []Share{
			{MemberID: "alice", Amount: 500},
			{MemberID: "bob", Amount: 400},
		},
	}))
	if err == nil {
		t.Fatal("expected error for shares not summing to amount")
	}
	if code := codeOf(t, err); code != connect.CodeInvalidArgument {
		t.Errorf("expected CodeInvalidArgument, got %v", code)
	}

	var connectErr *connect.Error
	errors.As(err, &connectErr)
	if rule := connectErr.Meta().Get("Ledger-Rule"); rule != string(ledger.RuleShareSum) {
		t.Errorf("rule: expected %q, got %q", ledger.RuleShareSum, rule)
	}
}

func TestRecordSettlement_SelfSettlement(t *testing.T) {
	s := setupLedgerTestServer(t)

	_, err := s.client.RecordSettlement(context.Background(), withToken(t, s, "bob", &RecordSettlementRequest{
		GroupID:      s.groupID,
		FromMemberID: "bob",
		ToMemberID:   "bob",
		Amount:       100,
	}))
	if err == nil {
		t.Fatal("expected error for self settlement")
	}
	if code := codeOf(t, err); code != connect.CodeInvalidArgument {
		t.Errorf("expected CodeInvalidArgument, got %v", code)
	}
}

func TestGetBalances_Errors(t *testing.T) {
	s := setupLedgerTestServer(t)
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		_, err := s.client.GetBalances(ctx, connect.NewRequest(&GetBalancesRequest{GroupID: s.groupID}))
		if code := codeOf(t, err); code != connect.CodeUnauthenticated {
			t.Errorf("expected CodeUnauthenticated, got %v", code)
		}
	})

	t.Run("not a member", func(t *testing.T) {
		_, err := s.client.GetBalances(ctx, withToken(t, s, "mallory", &GetBalancesRequest{GroupID: s.groupID}))
		if code := codeOf(t, err); code != connect.CodePermissionDenied {
			t.Errorf("expected CodePermissionDenied, got %v", code)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := s.client.GetBalances(ctx, withToken(t, s, "alice", &GetBalancesRequest{GroupID: "nonexistent-id"}))
		if code := codeOf(t, err); code != connect.CodeNotFound {
			t.Errorf("expected CodeNotFound, got %v", code)
		}
	})
}

func TestGetBalances_EmptyGroup(t *testing.T) {
	s := setupLedgerTestServer(t)

	resp, err := s.client.GetBalances(context.Background(), withToken(t, s, "alice", &GetBalancesRequest{GroupID: s.groupID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if resp.Msg.Version != 0 {
		t.Errorf("version: expected 0, got %d", resp.Msg.Version)
	}
	for _, b := range resp.Msg.Balances {
		if b.NetAmount != 0 {
			t.Errorf("balance of %s: expected 0, got %d", b.MemberID, b.NetAmount)
		}
	}
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"not found", ledger.ErrGroupNotFound, connect.CodeNotFound},
		{"not member", ledger.ErrNotMember, connect.CodePermissionDenied},
		{"unauthenticated", ledger.ErrUnauthenticated, connect.CodeUnauthenticated},
		{"store failure", errors.New("disk I/O error"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := codeOf(t, toConnectError(tt.err)); code != tt.want {
				t.Errorf("expected %v, got %v", tt.want, code)
			}
		})
	}
}
