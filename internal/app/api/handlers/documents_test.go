package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/notemarket/internal/app/service/access"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/response"
	"github.com/fatflowers/notemarket/pkg/types"
)

var paidDoc = &models.Document{ID: 7, Title: "Calculus I", PriceCents: 1999, SellerID: "seller-1", IsActive: true, FilePath: "docs/7/calc.pdf"}

func documentRouter(gate *stubGate) http.Handler {
	r := newRouter(buyer)
	RegisterDocumentRoutes(r, gate, testSettings, nopLog)
	RegisterDocumentAPIRoutes(r.Group("/api/v1"), gate, nopLog)
	return r
}

func TestDownload_Allowed(t *testing.T) {
	gate := &stubGate{doc: paidDoc, decision: access.Decision{Allowed: true, Reason: access.ReasonPurchased}}
	w := serve(t, documentRouter(gate), http.MethodGet, "/download/7", "")

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://files.test/store/docs/7/calc.pdf", w.Header().Get("Location"))
}

func TestDownload_DeniedRedirectsWithNotice(t *testing.T) {
	gate := &stubGate{doc: paidDoc, decision: access.Decision{Reason: access.ReasonNotPurchased, Notice: types.NoticePurchaseRequired}}
	w := serve(t, documentRouter(gate), http.MethodGet, "/download/7", "")

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://notes.test/documents/7?notice=purchase_required", w.Header().Get("Location"))
}

func TestDownload_Errors(t *testing.T) {
	gate := &stubGate{err: fmt.Errorf("document 7: %w", access.ErrNotFound)}
	w := serve(t, documentRouter(gate), http.MethodGet, "/download/7", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	gate = &stubGate{err: errors.New("db down")}
	w = serve(t, documentRouter(gate), http.MethodGet, "/download/7", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDownload_RequiresLogin(t *testing.T) {
	r := newRouter(nil)
	RegisterDocumentRoutes(r, &stubGate{doc: paidDoc}, testSettings, nopLog)

	w := serve(t, r, http.MethodGet, "/download/7", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetDocument(t *testing.T) {
	gate := &stubGate{doc: paidDoc, decision: access.Decision{Reason: access.ReasonNotPurchased, Notice: types.NoticePurchaseRequired}}
	w := serve(t, documentRouter(gate), http.MethodGet, "/api/v1/documents/7", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.APIResponse[DocumentView]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.APIResponseCodeOK, resp.Code)
	assert.Equal(t, "19.99", resp.Data.Price)
	assert.False(t, resp.Data.CanDownload)
	assert.Equal(t, access.ReasonNotPurchased, resp.Data.Reason)
	assert.NotContains(t, w.Body.String(), "calc.pdf")
}

func TestGetDocument_NotFound(t *testing.T) {
	gate := &stubGate{err: access.ErrNotFound}
	w := serve(t, documentRouter(gate), http.MethodGet, "/api/v1/documents/7", "")

	var resp response.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.APIResponseCodeNotFound, resp.Code)
}
