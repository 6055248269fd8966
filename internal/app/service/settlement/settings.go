package settlement

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/tool"
)

// Settings is the immutable part of the configuration the engine reads.
type Settings struct {
	// PlatformToken funds sales of unlinked sellers and is used for lookups.
	PlatformToken      string
	PlatformFeePercent decimal.Decimal
	CurrencyID         string
	Site               config.SiteConfig
}

func NewSettings(cfg *config.Config) Settings {
	return Settings{
		PlatformToken:      cfg.MercadoPago.AccessToken,
		PlatformFeePercent: decimal.NewFromFloat(cfg.Fees.PlatformFeePercent),
		CurrencyID:         cfg.MercadoPago.CurrencyID,
		Site:               cfg.Site,
	}
}

// MarketplaceFee is the platform commission on priceCents in major units,
// rounded to two decimals.
func (s Settings) MarketplaceFee(priceCents int64) decimal.Decimal {
	return tool.MinorToMajor(priceCents).
		Mul(s.PlatformFeePercent).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

func (s Settings) ReturnURL(documentID, purchaseID uint64) string {
	return s.Site.URL(fmt.Sprintf("/payment/return/%d", documentID)) +
		"?external_reference=" + url.QueryEscape(FormatReference(purchaseID))
}

func (s Settings) NotificationURL() string {
	return s.Site.URL("/payment/webhook")
}

func (s Settings) DocumentURL(documentID uint64) string {
	return s.Site.URL(fmt.Sprintf("%s/%d", s.Site.DocumentPath, documentID))
}

func (s Settings) DownloadURL(documentID uint64) string {
	return s.Site.URL(fmt.Sprintf("/download/%d", documentID))
}

func (s Settings) ProfileURL() string {
	return s.Site.URL(s.Site.ProfilePath)
}

// FileURL points at the file store; the file server itself is external.
func (s Settings) FileURL(filePath string) string {
	return strings.TrimRight(s.Site.DownloadBaseURL, "/") + "/" + strings.TrimLeft(filePath, "/")
}
