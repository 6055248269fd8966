package mercadopago

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Item is one checkout line. UnitPrice is in major currency units.
type Item struct {
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
	CurrencyID string
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type PreferenceRequest struct {
	Items             []Item
	MarketplaceFee    decimal.Decimal
	ExternalReference string
	BackURLs          BackURLs
	NotificationURL   string
	AutoReturn        string
}

// wire form of PreferenceRequest; amounts go out as JSON numbers.
type preferenceItemBody struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

type preferenceBody struct {
	Items             []preferenceItemBody `json:"items"`
	MarketplaceFee    float64              `json:"marketplace_fee,omitempty"`
	ExternalReference string               `json:"external_reference"`
	BackURLs          BackURLs             `json:"back_urls"`
	NotificationURL   string               `json:"notification_url,omitempty"`
	AutoReturn        string               `json:"auto_return,omitempty"`
}

func (r *PreferenceRequest) body() *preferenceBody {
	b := &preferenceBody{
		MarketplaceFee:    r.MarketplaceFee.Round(2).InexactFloat64(),
		ExternalReference: r.ExternalReference,
		BackURLs:          r.BackURLs,
		NotificationURL:   r.NotificationURL,
		AutoReturn:        r.AutoReturn,
	}
	for _, it := range r.Items {
		b.Items = append(b.Items, preferenceItemBody{
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.Round(2).InexactFloat64(),
			CurrencyID: it.CurrencyID,
		})
	}
	return b
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CheckoutURL prefers the live init point.
func (p *Preference) CheckoutURL() string {
	if p == nil {
		return ""
	}
	if p.InitPoint != "" {
		return p.InitPoint
	}
	return p.SandboxInitPoint
}

// Payment is the subset of the provider payment resource reconciliation reads.
type Payment struct {
	ID                PaymentID `json:"id"`
	Status            string    `json:"status"`
	StatusDetail      string    `json:"status_detail"`
	ExternalReference string    `json:"external_reference"`
}

// PaymentID decodes both numeric and string ids.
type PaymentID string

func (id *PaymentID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*id = PaymentID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*id = PaymentID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = PaymentID(n.String())
	return nil
}

func (id PaymentID) String() string { return string(id) }

// PaymentSearch is the search endpoint envelope. Depending on API version a
// result is either the payment itself or wraps it under "payment".
type PaymentSearch struct {
	Results []PaymentSearchResult `json:"results"`
}

type PaymentSearchResult struct {
	Payment
	Nested *Payment `json:"payment,omitempty"`
}

// First returns the first payment found, or nil.
func (s *PaymentSearch) First() *Payment {
	if s == nil || len(s.Results) == 0 {
		return nil
	}
	r := s.Results[0]
	if r.Nested != nil {
		return r.Nested
	}
	return &r.Payment
}

type OAuthToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	UserID       PaymentID `json:"user_id"`
	PublicKey    string    `json:"public_key"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
