package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/metrics"
)

const (
	opCreatePreference = "create_preference"
	opGetPayment       = "get_payment"
	opSearchPayments   = "search_payments"
	opExchangeCode     = "oauth_exchange_code"
	opRefreshToken     = "oauth_refresh_token"
)

// Client talks to the Mercado Pago REST API. Every call is wrapped by a
// circuit breaker shared across credentials; 4xx answers do not trip it.
type Client struct {
	cfg     config.MercadoPagoConfig
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Business
	log     *zap.SugaredLogger
}

func New(cfg *config.Config, log *zap.SugaredLogger, m *metrics.Business) *Client {
	return NewClient(cfg.MercadoPago, log, m)
}

func NewClient(cfg config.MercadoPagoConfig, log *zap.SugaredLogger, m *metrics.Business) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	c := &Client{cfg: cfg, http: hc, metrics: m, log: log}
	if cfg.Breaker.Enabled {
		c.breaker = gobreaker.NewCircuitBreaker(breakerSettings(cfg.Breaker, log))
	}
	return c
}

func breakerSettings(cfg config.BreakerConfig, log *zap.SugaredLogger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "mercadopago",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientSide(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit_breaker_state_change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
}

// BreakerState reports the breaker state, "disabled" when not configured.
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// CreatePreference creates a checkout preference funded by token.
func (c *Client) CreatePreference(ctx context.Context, token string, req *PreferenceRequest) (*Preference, error) {
	if token == "" {
		return nil, &ProviderError{Op: opCreatePreference, Message: "missing credential"}
	}
	if req == nil || len(req.Items) == 0 {
		return nil, &ProviderError{Op: opCreatePreference, Message: "preference has no items"}
	}
	var out Preference
	err := c.call(ctx, opCreatePreference, token, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req.body()).Post("/checkout/preferences")
	})
	if err != nil {
		return nil, err
	}
	if out.CheckoutURL() == "" {
		return nil, &ProviderError{Op: opCreatePreference, Message: "response carries no checkout url"}
	}
	return &out, nil
}

func (c *Client) GetPayment(ctx context.Context, token, paymentID string) (*Payment, error) {
	if paymentID == "" {
		return nil, &ProviderError{Op: opGetPayment, Message: "empty payment id"}
	}
	var out Payment
	err := c.call(ctx, opGetPayment, token, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", paymentID).Get("/v1/payments/{id}")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchPaymentsByExternalReference lists payments tagged with ref, newest first.
func (c *Client) SearchPaymentsByExternalReference(ctx context.Context, token, ref string) (*PaymentSearch, error) {
	var out PaymentSearch
	err := c.call(ctx, opSearchPayments, token, &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(map[string]string{
			"external_reference": ref,
			"sort":               "date_created",
			"criteria":           "desc",
		}).Get("/v1/payments/search")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, op, token string, out any, send func(*resty.Request) (*resty.Response, error)) error {
	start := time.Now()
	_, err := c.execute(func() (any, error) {
		req := c.http.R().
			SetContext(ctx).
			SetResult(out).
			SetError(&apiError{}).
			ForceContentType("application/json")
		if token != "" {
			req.SetAuthToken(token)
		}
		resp, err := send(req)
		if err != nil {
			return nil, &ProviderError{Op: op, Message: err.Error(), Err: err}
		}
		if resp.IsError() {
			return nil, &ProviderError{Op: op, StatusCode: resp.StatusCode(), Message: errorMessage(resp)}
		}
		return nil, nil
	})
	c.metrics.ProviderCall(op, start, err)
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		// gobreaker.ErrOpenState / ErrTooManyRequests
		err = &ProviderError{Op: op, Message: err.Error(), Err: err}
	}
	return err
}

func (c *Client) execute(fn func() (any, error)) (any, error) {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

func errorMessage(resp *resty.Response) string {
	if e, ok := resp.Error().(*apiError); ok && e != nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	body := resp.String()
	if len(body) > 256 {
		body = body[:256]
	}
	if body == "" {
		return fmt.Sprintf("http %d", resp.StatusCode())
	}
	return body
}

// AuthorizeURL is where sellers are sent to grant the platform access to
// their account.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("platform_id", "mp")
	q.Set("redirect_uri", c.cfg.OAuthRedirectURL)
	if state != "" {
		q.Set("state", state)
	}
	return c.cfg.AuthURL + "?" + q.Encode()
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*OAuthToken, error) {
	if code == "" {
		return nil, &ProviderError{Op: opExchangeCode, Message: "empty authorization code"}
	}
	return c.oauthToken(ctx, opExchangeCode, map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": c.cfg.OAuthRedirectURL,
	})
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*OAuthToken, error) {
	if refreshToken == "" {
		return nil, &ProviderError{Op: opRefreshToken, Message: "empty refresh token"}
	}
	return c.oauthToken(ctx, opRefreshToken, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (c *Client) oauthToken(ctx context.Context, op string, body map[string]string) (*OAuthToken, error) {
	body["client_id"] = c.cfg.ClientID
	body["client_secret"] = c.cfg.ClientSecret
	var out OAuthToken
	err := c.call(ctx, op, "", &out, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).Post("/oauth/token")
	})
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &ProviderError{Op: op, Message: "token response carries no access token"}
	}
	return &out, nil
}
