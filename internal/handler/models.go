package handler

import "encoding/json"

// Amounts on the REST surface are major-unit decimal numbers, e.g. 45.50.

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

type MemberResponse struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type DebtResponse struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount json.Number `json:"amount"`
}

type GroupResponse struct {
	ID               string           `json:"_id"`
	Name             string           `json:"name"`
	Type             string           `json:"type"`
	Members          []MemberResponse `json:"members"`
	MyBalance        json.Number      `json:"myBalance"`
	MyBalanceDisplay string           `json:"myBalanceDisplay"`
	MyBalanceLabel   string           `json:"myBalanceLabel"`
	SimplifyDebts    []DebtResponse   `json:"simplifyDebts"`
}

type ShareResponse struct {
	MemberID string      `json:"memberId"`
	Amount   json.Number `json:"amount"`
}

// ExpenseResponse is one feed item; settlements set IsSettlement and PaidTo.
type ExpenseResponse struct {
	ID           string          `json:"_id"`
	Description  string          `json:"description"`
	Amount       json.Number     `json:"amount"`
	Date         string          `json:"date"`
	CreatedAt    int64           `json:"createdAt"`
	PaidBy       MemberResponse  `json:"paidBy"`
	PaidTo       *MemberResponse `json:"paidTo,omitempty"`
	IsSettlement bool            `json:"isSettlement"`
	Shares       []ShareResponse `json:"shares"`
}

type ListGroupsResponse struct {
	Success bool            `json:"success"`
	Groups  []GroupResponse `json:"groups"`
}

type GetGroupResponse struct {
	Success  bool              `json:"success"`
	Group    GroupResponse     `json:"group"`
	Expenses []ExpenseResponse `json:"expenses"`
}

type BalanceResponse struct {
	MemberID  string      `json:"memberId"`
	NetAmount json.Number `json:"netAmount"`
}

type GetBalancesResponse struct {
	Success       bool              `json:"success"`
	Version       int64             `json:"version"`
	Balances      []BalanceResponse `json:"balances"`
	SimplifyDebts []DebtResponse    `json:"simplifyDebts"`
}

type ShareRequest struct {
	MemberID string      `json:"memberId"`
	Amount   json.Number `json:"amount"`
}

type WeightRequest struct {
	MemberID string `json:"memberId"`
	Weight   int64  `json:"weight"`
}

type ItemRequest struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	AssignedTo  []string    `json:"assignedTo"`
}

type ExpenseRequest struct {
	Description  string          `json:"description"`
	Amount       json.Number     `json:"amount"`
	PaidBy       string          `json:"paidBy"`
	SplitType    string          `json:"splitType"`
	Participants []string        `json:"participants"`
	Shares       []ShareRequest  `json:"shares"`
	Weights      []WeightRequest `json:"weights"`
	Items        []ItemRequest   `json:"items"`
}

type SettlementRequest struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount json.Number `json:"amount"`
	Note   string      `json:"note"`
}

type CreateExpenseResponse struct {
	Success bool            `json:"success"`
	Expense ExpenseResponse `json:"expense"`
}

type CreateSettlementResponse struct {
	Success    bool            `json:"success"`
	Settlement ExpenseResponse `json:"settlement"`
}
