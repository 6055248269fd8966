package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/response"
	"github.com/fatflowers/notemarket/pkg/tool"
)

type FeesView struct {
	PlatformFeePercent     float64      `json:"platform_fee_percent"`
	ProviderCommissionRate float64      `json:"provider_commission_rate"`
	PlatformCommissionRate float64      `json:"platform_commission_rate"`
	RegionalTaxEnabled     bool         `json:"regional_tax_enabled"`
	RegionalTaxRate        float64      `json:"regional_tax_rate"`
	Estimate               *FeeEstimate `json:"estimate,omitempty"`
}

// FeeEstimate is an indicative breakdown for a listing price. Settlement
// never reads it; the provider computes the real deductions.
type FeeEstimate struct {
	Price              string `json:"price"`
	ProviderCommission string `json:"provider_commission"`
	PlatformCommission string `json:"platform_commission"`
	RegionalTax        string `json:"regional_tax"`
	SellerNet          string `json:"seller_net"`
}

func estimateFees(f config.FeeConfig, priceCents int64) *FeeEstimate {
	price := tool.MinorToMajor(priceCents)
	part := func(rate float64) decimal.Decimal {
		return price.Mul(decimal.NewFromFloat(rate)).Round(2)
	}
	provider := part(f.ProviderCommissionRate)
	platform := part(f.PlatformCommissionRate)
	tax := decimal.Zero
	if f.RegionalTaxEnabled {
		tax = part(f.RegionalTaxRate)
	}
	net := price.Sub(provider).Sub(platform).Sub(tax)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return &FeeEstimate{
		Price:              price.StringFixed(2),
		ProviderCommission: provider.StringFixed(2),
		PlatformCommission: platform.StringFixed(2),
		RegionalTax:        tax.StringFixed(2),
		SellerNet:          net.StringFixed(2),
	}
}

// @Summary      Fee configuration
// @Description  Configured fee, commission and tax rates. With price_cents an indicative seller net is included.
// @Tags         Purchase
// @Produce      json
// @Param        price_cents  query  int  false  "Listing price in cents"
// @Success      200  {object}  handlers.RespFees
// @Router       /api/v1/fees [get]
func ApiGetFees(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := cfg.Fees
		view := FeesView{
			PlatformFeePercent:     f.PlatformFeePercent,
			ProviderCommissionRate: f.ProviderCommissionRate,
			PlatformCommissionRate: f.PlatformCommissionRate,
			RegionalTaxEnabled:     f.RegionalTaxEnabled,
			RegionalTaxRate:        f.RegionalTaxRate,
		}
		if v := c.Query("price_cents"); v != "" {
			cents, err := strconv.ParseInt(v, 10, 64)
			if err != nil || cents < 0 {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid price_cents"))
				return
			}
			view.Estimate = estimateFees(f, cents)
		}
		c.JSON(http.StatusOK, response.OKT(view))
	}
}

func RegisterFeeRoutes(r gin.IRouter, cfg *config.Config) {
	r.GET("/fees", ApiGetFees(cfg))
}
