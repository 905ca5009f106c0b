package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/junah201/coincheatkey-position-bot/internal/domain"
	"github.com/junah201/coincheatkey-position-bot/internal/infra"
)

// RestClient handles Binance futures REST calls: listen-key lifecycle, the
// one-time account snapshot at startup and mark-price lookups for PnL
// queries. All calls go through a local rate limiter.
type RestClient struct {
	baseURL   string
	apiKey    string
	secretKey []byte
	client    *http.Client
	limiter   *infra.RateLimiter
}

// NewRestClient creates a client against the given base URL
// (e.g. https://fapi.binance.com).
func NewRestClient(baseURL, apiKey, secretKey string) *RestClient {
	return &RestClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		secretKey: []byte(secretKey),
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   infra.NewRateLimiter(10, 5),
	}
}

// sign stamps the payload with a timestamp and returns the final query
// string. The signature must trail the exact byte sequence that was signed,
// so it is appended to the encoded payload rather than folded back into the
// sorted values.
func (c *RestClient) sign(values url.Values) string {
	values.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	payload := values.Encode()

	mac := hmac.New(sha256.New, c.secretKey)
	mac.Write([]byte(payload))
	return payload + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

func (c *RestClient) do(ctx context.Context, method, path string, values url.Values, signed bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := values.Encode()
	if signed {
		query = c.sign(values)
	}

	endpoint := c.baseURL + path
	if query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, body)
	}
	return body, nil
}

// CreateListenKey opens a user-data stream and returns its listen key.
func (c *RestClient) CreateListenKey(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/fapi/v1/listenKey", url.Values{}, false)
	if err != nil {
		return "", err
	}
	var parsed struct {
		ListenKey string `json:"listenKey"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.ListenKey == "" {
		return "", fmt.Errorf("empty listenKey in response")
	}
	return parsed.ListenKey, nil
}

// KeepAliveListenKey extends the stream's validity. Binance expires keys
// after 60 minutes without a keepalive.
func (c *RestClient) KeepAliveListenKey(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPut, "/fapi/v1/listenKey", url.Values{}, false)
	return err
}

type accountResponse struct {
	Positions []struct {
		Symbol      string `json:"symbol"`
		PositionAmt string `json:"positionAmt"`
		EntryPrice  string `json:"entryPrice"`
	} `json:"positions"`
}

// AccountPositions fetches the current open positions, used once at startup
// to seed the ledger. Flat entries are dropped.
func (c *RestClient) AccountPositions(ctx context.Context) ([]domain.PositionSnapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/fapi/v2/account", url.Values{}, true)
	if err != nil {
		return nil, err
	}

	var parsed accountResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	snapshots := make([]domain.PositionSnapshot, 0, len(parsed.Positions))
	for _, p := range parsed.Positions {
		amount := dec(p.PositionAmt)
		if amount.IsZero() {
			continue
		}
		snapshots = append(snapshots, domain.PositionSnapshot{
			Symbol:     p.Symbol,
			Amount:     amount,
			EntryPrice: dec(p.EntryPrice),
		})
	}
	return snapshots, nil
}

// MarkPrice fetches the current mark price for one symbol. Implements the
// PnL query service's price source.
func (c *RestClient) MarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	values := url.Values{}
	values.Set("symbol", symbol)

	body, err := c.do(ctx, http.MethodGet, "/fapi/v1/premiumIndex", values, false)
	if err != nil {
		return decimal.Zero, err
	}

	var parsed struct {
		MarkPrice string `json:"markPrice"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(parsed.MarkPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed markPrice %q: %w", parsed.MarkPrice, err)
	}
	return price, nil
}
