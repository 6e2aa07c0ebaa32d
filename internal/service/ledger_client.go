package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// LedgerServiceClient is a client for the LedgerService.
type LedgerServiceClient struct {
	getBalances        *connect.Client[GetBalancesRequest, GetBalancesResponse]
	getSimplifiedDebts *connect.Client[GetSimplifiedDebtsRequest, GetSimplifiedDebtsResponse]
	recordExpense      *connect.Client[RecordExpenseRequest, RecordExpenseResponse]
	recordSettlement   *connect.Client[RecordSettlementRequest, RecordSettlementResponse]
}

// NewLedgerServiceClient constructs a client for the LedgerService at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &LedgerServiceClient{
		getBalances: connect.NewClient[GetBalancesRequest, GetBalancesResponse](
			httpClient, baseURL+GetBalancesProcedure, opts...),
		getSimplifiedDebts: connect.NewClient[GetSimplifiedDebtsRequest, GetSimplifiedDebtsResponse](
			httpClient, baseURL+GetSimplifiedDebtsProcedure, opts...),
		recordExpense: connect.NewClient[RecordExpenseRequest, RecordExpenseResponse](
			httpClient, baseURL+RecordExpenseProcedure, opts...),
		recordSettlement: connect.NewClient[RecordSettlementRequest, RecordSettlementResponse](
			httpClient, baseURL+RecordSettlementProcedure, opts...),
	}
}

func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetSimplifiedDebts(ctx context.Context, req *connect.Request[GetSimplifiedDebtsRequest]) (*connect.Response[GetSimplifiedDebtsResponse], error) {
	return c.getSimplifiedDebts.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}
