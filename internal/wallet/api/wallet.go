package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ehuza/internal/core"
	"ehuza/internal/wallet"
)

type transactionDTO struct {
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	CreatedAt     string  `json:"createdAt"`
}

func (d transactionDTO) toTransaction() core.Transaction {
	createdAt, err := time.Parse(time.RFC3339, d.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}
	return core.Transaction{
		ID:          d.TransactionID,
		Amount:      core.MoneyFromFloat(d.Amount),
		Type:        core.TransactionType(d.Type),
		Description: d.Description,
		CreatedAt:   createdAt,
	}
}

func (c *Client) Balance(ctx context.Context) (core.Money, error) {
	var resp struct {
		Balance float64 `json:"balance"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/wallet/balance", nil, nil, &resp); err != nil {
		return core.Money{}, err
	}
	return core.MoneyFromFloat(resp.Balance), nil
}

type actionResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Balance float64 `json:"balance"`
}

func (c *Client) Deposit(ctx context.Context, in wallet.TransactionInput) (wallet.ActionResult, error) {
	return c.walletAction(ctx, "/wallet/deposit", in)
}

func (c *Client) Withdraw(ctx context.Context, in wallet.TransactionInput) (wallet.ActionResult, error) {
	return c.walletAction(ctx, "/wallet/withdraw", in)
}

func (c *Client) walletAction(ctx context.Context, path string, in wallet.TransactionInput) (wallet.ActionResult, error) {
	body := map[string]any{"amount": in.Amount.Float(), "description": in.Description}
	var resp actionResponse
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return wallet.ActionResult{}, err
	}
	return wallet.ActionResult{
		Success: resp.Success,
		Message: resp.Message,
		Balance: core.MoneyFromFloat(resp.Balance),
	}, nil
}

func (c *Client) Transactions(ctx context.Context, page, limit int) (wallet.TransactionPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Success      bool             `json:"success"`
		Transactions []transactionDTO `json:"transactions"`
		Total        int              `json:"total"`
		Page         int              `json:"page"`
		TotalPages   int              `json:"totalPages"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/wallet/transactions", query, nil, &resp); err != nil {
		return wallet.TransactionPage{}, err
	}

	txs := make([]core.Transaction, 0, len(resp.Transactions))
	for _, dto := range resp.Transactions {
		txs = append(txs, dto.toTransaction())
	}
	// Contract check at the fetch boundary: duplicate IDs must surface.
	if err := core.ValidateTransactions(txs); err != nil {
		return wallet.TransactionPage{}, err
	}

	return wallet.TransactionPage{
		Transactions: txs,
		Total:        resp.Total,
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
	}, nil
}

// MonthlySummary reads the pre-aggregated 12-month series. Older backend
// revisions expose the endpoint under a misspelled path; that spelling is
// tried when the canonical one is missing.
func (c *Client) MonthlySummary(ctx context.Context) ([]core.MonthlyPoint, error) {
	points, err := c.monthly(ctx, "/transactions/monthly")
	if err != nil {
		var apiErr *wallet.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return c.monthly(ctx, "/transactions/comparision")
		}
		return nil, err
	}
	return points, nil
}

func (c *Client) monthly(ctx context.Context, path string) ([]core.MonthlyPoint, error) {
	var resp struct {
		MonthlyTransactions []struct {
			Month    int     `json:"month"`
			Deposit  float64 `json:"deposit"`
			Withdraw float64 `json:"withdraw"`
		} `json:"monthlyTransactions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}

	points := make([]core.MonthlyPoint, 0, len(resp.MonthlyTransactions))
	for _, m := range resp.MonthlyTransactions {
		points = append(points, core.MonthlyPoint{
			Month:    m.Month,
			Deposit:  core.MoneyFromFloat(m.Deposit),
			Withdraw: core.MoneyFromFloat(m.Withdraw),
		})
	}
	return points, nil
}
