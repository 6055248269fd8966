package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/response"
)

var testFees = config.FeeConfig{
	PlatformFeePercent:     5,
	ProviderCommissionRate: 0.0774,
	PlatformCommissionRate: 0.05,
	RegionalTaxEnabled:     true,
	RegionalTaxRate:        0.03,
}

func TestEstimateFees(t *testing.T) {
	e := estimateFees(testFees, 10000)
	assert.Equal(t, "100.00", e.Price)
	assert.Equal(t, "7.74", e.ProviderCommission)
	assert.Equal(t, "5.00", e.PlatformCommission)
	assert.Equal(t, "3.00", e.RegionalTax)
	assert.Equal(t, "84.26", e.SellerNet)

	noTax := testFees
	noTax.RegionalTaxEnabled = false
	assert.Equal(t, "0.00", estimateFees(noTax, 10000).RegionalTax)
}

func TestGetFees(t *testing.T) {
	r := newRouter(nil)
	RegisterFeeRoutes(r.Group("/api/v1"), &config.Config{Fees: testFees})

	w := serve(t, r, http.MethodGet, "/api/v1/fees", "")
	var resp response.APIResponse[FeesView]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5.0, resp.Data.PlatformFeePercent)
	assert.Nil(t, resp.Data.Estimate)

	w = serve(t, r, http.MethodGet, "/api/v1/fees?price_cents=10000", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Estimate)
	assert.Equal(t, "84.26", resp.Data.Estimate.SellerNet)

	w = serve(t, r, http.MethodGet, "/api/v1/fees?price_cents=-1", "")
	var bad response.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	assert.Equal(t, response.APIResponseCodeBadRequest, bad.Code)
}

func TestHealthz(t *testing.T) {
	r := newRouter(nil)
	RegisterHealthRoutes(r, stubBreaker{})

	w := serve(t, r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"provider":"closed"`)
}
