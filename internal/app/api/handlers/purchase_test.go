package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/pkg/types"
)

func buyRouter(mgr *stubManager) http.Handler {
	r := newRouter(buyer)
	RegisterPurchaseRoutes(r, mgr, testSettings, nopLog)
	return r
}

func TestBuy_RedirectsToCheckout(t *testing.T) {
	mgr := &stubManager{initiateRes: &settlement.InitiateResult{
		Kind:        settlement.InitiateCheckout,
		PurchaseID:  42,
		CheckoutURL: "https://checkout.test/pref-1",
		FundedBy:    types.FundingSourceSeller,
	}}
	w := serve(t, buyRouter(mgr), http.MethodGet, "/buy/7", "")

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://checkout.test/pref-1", w.Header().Get("Location"))
	assert.Equal(t, uint64(7), mgr.gotDocument)
	assert.Equal(t, buyer, mgr.gotBuyer)
}

func TestBuy_FreeDocumentGoesToDownload(t *testing.T) {
	mgr := &stubManager{initiateRes: &settlement.InitiateResult{Kind: settlement.InitiateFree, DocumentID: 7}}
	w := serve(t, buyRouter(mgr), http.MethodGet, "/buy/7", "")

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://notes.test/download/7", w.Header().Get("Location"))
}

func TestBuy_ErrorRedirects(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		notice types.Notice
	}{
		{"own item", fmt.Errorf("document 7: %w", settlement.ErrSelfPurchase), types.NoticeCannotBuyOwnItem},
		{"provider down", fmt.Errorf("create preference: %w", settlement.ErrProvider), types.NoticeProviderError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mgr := &stubManager{initiateErr: tc.err, initiateRes: &settlement.InitiateResult{PurchaseID: 1}}
			w := serve(t, buyRouter(mgr), http.MethodGet, "/buy/7", "")

			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "https://notes.test/documents/7?notice="+string(tc.notice), w.Header().Get("Location"))
		})
	}
}

func TestBuy_NotFound(t *testing.T) {
	mgr := &stubManager{initiateErr: fmt.Errorf("document 7: %w", settlement.ErrNotFound)}
	w := serve(t, buyRouter(mgr), http.MethodGet, "/buy/7", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, buyRouter(mgr), http.MethodGet, "/buy/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuy_RequiresLogin(t *testing.T) {
	mgr := &stubManager{}
	r := newRouter(nil)
	RegisterPurchaseRoutes(r, mgr, testSettings, nopLog)

	w := serve(t, r, http.MethodGet, "/buy/7", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, mgr.gotDocument)
}

func TestPaymentReturn_Approved(t *testing.T) {
	mgr := &stubManager{returnRes: &settlement.ReturnResult{Approved: true, PurchaseID: 42}}
	w := serve(t, buyRouter(mgr), http.MethodGet, "/payment/return/7?collection_id=pay-9&external_reference=purchase%3A42", "")

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://notes.test/download/7", w.Header().Get("Location"))
	assert.Equal(t, uint64(7), mgr.gotReturn.DocumentID)
	assert.Equal(t, "pay-9", mgr.gotReturn.PaymentID)
	assert.Equal(t, "purchase:42", mgr.gotReturn.ExternalReference)
	assert.Equal(t, buyer, mgr.gotReturn.Caller)
}

func TestPaymentReturn_NotApproved(t *testing.T) {
	mgr := &stubManager{}
	w := serve(t, buyRouter(mgr), http.MethodGet, "/payment/return/7?payment_id=p1&collection_id=p2", "")

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://notes.test/documents/7?notice=payment_registered", w.Header().Get("Location"))
	assert.Equal(t, "p1", mgr.gotReturn.PaymentID)
}

func TestPaymentReturn_AnonymousStillReconciles(t *testing.T) {
	mgr := &stubManager{}
	r := newRouter(nil)
	RegisterPurchaseRoutes(r, mgr, testSettings, nopLog)

	w := serve(t, r, http.MethodGet, "/payment/return/7?id=p3", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "p3", mgr.gotReturn.PaymentID)
	assert.Nil(t, mgr.gotReturn.Caller)
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func returnWithFlash(t *testing.T, r http.Handler, target, flash string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: flash})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuy_SellerNotLinkedNoticeSurvivesCheckout(t *testing.T) {
	mgr := &stubManager{initiateRes: &settlement.InitiateResult{
		Kind:        settlement.InitiateCheckout,
		PurchaseID:  42,
		CheckoutURL: "https://checkout.test/pref-1",
		FundedBy:    types.FundingSourcePlatform,
		Notice:      types.NoticeSellerNotLinked,
	}}
	w := serve(t, buyRouter(mgr), http.MethodGet, "/buy/7", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://checkout.test/pref-1", w.Header().Get("Location"))

	flash := cookieNamed(w, flashCookie)
	require.NotNil(t, flash)
	assert.Equal(t, string(types.NoticeSellerNotLinked), flash.Value)
	assert.Equal(t, flashCookiePath, flash.Path)
	assert.True(t, flash.HttpOnly)

	mgr.returnRes = &settlement.ReturnResult{Approved: true, PurchaseID: 42}
	w = returnWithFlash(t, buyRouter(mgr), "/payment/return/7?payment_id=pay-1", flash.Value)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://notes.test/download/7?notice=seller_not_linked", w.Header().Get("Location"))

	cleared := cookieNamed(w, flashCookie)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestBuy_NoFlashWithoutNotice(t *testing.T) {
	mgr := &stubManager{initiateRes: &settlement.InitiateResult{
		Kind:        settlement.InitiateCheckout,
		CheckoutURL: "https://checkout.test/pref-1",
	}}
	w := serve(t, buyRouter(mgr), http.MethodGet, "/buy/7", "")
	assert.Nil(t, cookieNamed(w, flashCookie))
}

func TestPaymentReturn_FlashDoesNotOverrideOutcome(t *testing.T) {
	mgr := &stubManager{}
	w := returnWithFlash(t, buyRouter(mgr), "/payment/return/7?payment_id=p1", string(types.NoticeSellerNotLinked))
	assert.Equal(t, "https://notes.test/documents/7?notice=payment_registered", w.Header().Get("Location"))
}

func TestPaymentReturn_IgnoresUnknownFlash(t *testing.T) {
	mgr := &stubManager{returnRes: &settlement.ReturnResult{Approved: true}}
	w := returnWithFlash(t, buyRouter(mgr), "/payment/return/7?payment_id=p1", "<script>")
	assert.Equal(t, "https://notes.test/download/7", w.Header().Get("Location"))
}
