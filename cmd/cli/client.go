package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iho/cashledger/internal/adapter/http/dto"
)

// apiClient is a thin client for the cashledger HTTP API.
type apiClient struct {
	baseURL        string
	token          string
	idempotencyKey string
	http           *http.Client
}

func newAPIClient(baseURL, token, idempotencyKey string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		token:          token,
		idempotencyKey: idempotencyKey,
		http:           &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx answer decoded from the server's error body.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Kind != "" {
		return fmt.Sprintf("%s (%d %s)", e.Body.Message, e.Status, e.Body.Kind)
	}
	if e.Body.Message != "" {
		return fmt.Sprintf("%s (%d)", e.Body.Message, e.Status)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (c *apiClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.idempotencyKey != "" && method == http.MethodPost {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, &apiErr.Body)
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *apiClient) cashIn(ctx context.Context, account, amount string) (*dto.OperationResponse, error) {
	var op dto.OperationResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(account)+"/cash-in", nil,
		dto.AmountRequest{Amount: amount}, &op)
	return &op, err
}

func (c *apiClient) withdraw(ctx context.Context, account, amount string) (*dto.OperationResponse, error) {
	var op dto.OperationResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/accounts/"+url.PathEscape(account)+"/withdraw", nil,
		dto.AmountRequest{Amount: amount}, &op)
	return &op, err
}

func (c *apiClient) balance(ctx context.Context, account string) (*dto.BalanceResponse, error) {
	var b dto.BalanceResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(account)+"/balance", nil, nil, &b)
	return &b, err
}

func (c *apiClient) operations(ctx context.Context, account string, limit, offset int) ([]dto.OperationResponse, error) {
	var ops []dto.OperationResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+url.PathEscape(account)+"/operations", page(limit, offset), nil, &ops)
	return ops, err
}

func (c *apiClient) transfer(ctx context.Context, from, to, amount string) (*dto.TransferResponse, error) {
	var t dto.TransferResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/transfers", nil,
		dto.CreateTransferRequest{From: from, To: to, Amount: amount}, &t)
	return &t, err
}

func (c *apiClient) listTransfers(ctx context.Context, limit, offset int) ([]dto.TransferResponse, error) {
	var ts []dto.TransferResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/transfers", page(limit, offset), nil, &ts)
	return ts, err
}

func (c *apiClient) getTransfer(ctx context.Context, id int64) (*dto.TransferResponse, error) {
	var t dto.TransferResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/transfers/"+strconv.FormatInt(id, 10), nil, nil, &t)
	return &t, err
}

func (c *apiClient) deleteTransfer(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/transfers/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func page(limit, offset int) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
}
