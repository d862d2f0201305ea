package apiv3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/bytedance/sonic"
)

// Client talks to the Raydium API v3.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = constants.RaydiumAPIBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("raydium api http %d", e.StatusCode)
	}
	return fmt.Sprintf("raydium api http %d: %s", e.StatusCode, b)
}

// APIError is a {"success": false} envelope.
type APIError struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("raydium api error: %s", e.Msg)
}

// PoolsByMint lists pools containing mint1 (and mint2 when set).
func (c *Client) PoolsByMint(ctx context.Context, q PoolQuery) (*PoolsPage, error) {
	if strings.TrimSpace(q.Mint1) == "" {
		return nil, fmt.Errorf("mint1 is required")
	}
	if q.PoolType == "" {
		q.PoolType = "all"
	}
	if q.SortField == "" {
		q.SortField = constants.RaydiumSortField
	}
	if q.SortType == "" {
		q.SortType = constants.RaydiumSortOrderDsc
	}
	if q.PageSize <= 0 {
		q.PageSize = constants.DiscoveryPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	v := url.Values{}
	v.Set("mint1", q.Mint1)
	v.Set("mint2", q.Mint2)
	v.Set("poolType", q.PoolType)
	v.Set("poolSortField", q.SortField)
	v.Set("sortType", q.SortType)
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	v.Set("page", strconv.Itoa(q.Page))

	var out Response[PoolsPage]
	if err := c.get(ctx, "/pools/info/mint", v, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// PoolsByIDs returns the listing view of the given pools.
func (c *Client) PoolsByIDs(ctx context.Context, ids []string) ([]PoolInfo, error) {
	var out Response[[]PoolInfo]
	if err := c.get(ctx, "/pools/info/ids", url.Values{"ids": {strings.Join(ids, ",")}}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// PoolKeysByIDs returns the account keys of the given pools.
func (c *Client) PoolKeysByIDs(ctx context.Context, ids []string) ([]PoolKeys, error) {
	var out Response[[]*PoolKeys]
	if err := c.get(ctx, "/pools/key/ids", url.Values{"ids": {strings.Join(ids, ",")}}, &out); err != nil {
		return nil, err
	}
	keys := make([]PoolKeys, 0, len(out.Data))
	for _, k := range out.Data {
		// unknown ids come back as null
		if k != nil {
			keys = append(keys, *k)
		}
	}
	return keys, nil
}

// TokenInfo returns mint metadata.
func (c *Client) TokenInfo(ctx context.Context, mints []string) ([]Token, error) {
	var out Response[[]*Token]
	if err := c.get(ctx, "/mint/ids", url.Values{"mints": {strings.Join(mints, ",")}}, &out); err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(out.Data))
	for _, t := range out.Data {
		if t != nil {
			tokens = append(tokens, *t)
		}
	}
	return tokens, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.BaseURL + path + "?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("accept", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var envelope struct {
		Success *bool `json:"success"`
	}
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode raydium api response: %w", err)
	}
	if envelope.Success == nil {
		return fmt.Errorf("invalid raydium api response: missing success flag")
	}
	if !*envelope.Success {
		apiErr := &APIError{}
		if err := sonic.Unmarshal(body, apiErr); err != nil {
			return fmt.Errorf("failed to decode raydium api error: %w", err)
		}
		return apiErr
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode raydium api %s response: %w", path, err)
	}
	return nil
}
