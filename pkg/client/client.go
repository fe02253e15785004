// Package client is a typed HTTP client for the wallet API.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"staking_wallet_back/models"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// errorBody covers the "message" and "error" body shapes.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15*time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// NewWithResty wraps a preconfigured resty client, e.g. one bound to a test server.
func NewWithResty(http *resty.Client) *Client {
	return &Client{http: http}
}

func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	return out, c.do(ctx, resty.MethodGet, "/api/health", nil, nil, &out)
}

func (c *Client) Connect(ctx context.Context, in models.ConnectInput) (models.ConnectResult, error) {
	var out models.ConnectResult
	return out, c.do(ctx, resty.MethodPost, "/api/wallet/connect", in, nil, &out)
}

func (c *Client) ValidateReferral(ctx context.Context, in models.ValidateReferralInput) (models.ReferralCheck, error) {
	var out models.ReferralCheck
	return out, c.do(ctx, resty.MethodPost, "/api/wallet/validate-referral", in, nil, &out)
}

func (c *Client) SubmitReferral(ctx context.Context, in models.SubmitReferralInput) (models.SubmitReferralResult, error) {
	var out models.SubmitReferralResult
	return out, c.do(ctx, resty.MethodPost, "/api/wallet/referral", in, nil, &out)
}

func (c *Client) SkipReferral(ctx context.Context, in models.SkipReferralInput) (models.SkipReferralResult, error) {
	var out models.SkipReferralResult
	return out, c.do(ctx, resty.MethodPost, "/api/wallet/skip-referral", in, nil, &out)
}

func (c *Client) Stake(ctx context.Context, in models.StakeInput) (models.StakeResult, error) {
	var out models.StakeResult
	return out, c.do(ctx, resty.MethodPost, "/api/wallet/stake", in, nil, &out)
}

func (c *Client) StakeInfo(ctx context.Context, walletAddress string) (models.StakeInfo, error) {
	var out models.StakeInfo
	return out, c.do(ctx, resty.MethodGet, "/api/wallet/stake-info", nil, walletQuery(walletAddress), &out)
}

func (c *Client) Stakes(ctx context.Context, walletAddress string) ([]models.StakingRecord, error) {
	var out struct {
		Stakes []models.StakingRecord `json:"stakes"`
	}
	err := c.do(ctx, resty.MethodGet, "/api/wallet/stakes", nil, walletQuery(walletAddress), &out)
	return out.Stakes, err
}

func (c *Client) Mirror(ctx context.Context, walletAddress string) (models.WalletSnapshot, error) {
	var out models.WalletSnapshot
	return out, c.do(ctx, resty.MethodGet, "/api/wallet/mirror", nil, walletQuery(walletAddress), &out)
}

func walletQuery(walletAddress string) map[string]string {
	return map[string]string{"walletAddress": walletAddress}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, query map[string]string, result interface{}) error {
	req := c.http.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&errorBody{})
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if query != nil {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if eb, ok := resp.Error().(*errorBody); ok {
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
		}
		return apiErr
	}
	return nil
}
