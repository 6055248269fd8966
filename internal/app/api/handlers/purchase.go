package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/api/middleware"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/response"
	"github.com/fatflowers/notemarket/pkg/types"
)

// @Summary      Buy a document
// @Description  Starts a purchase. Redirects to the provider checkout, to the download for free documents, or back to the document page with a notice.
// @Tags         Purchase
// @Param        document_id  path  int  true  "Document ID"
// @Success      302
// @Failure      401  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /buy/{document_id} [get]
func ApiBuy(mgr settlement.Manager, settings settlement.Settings, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, ok := documentID(c)
		if !ok {
			return
		}
		lg := logctx.FromCtx(c, log)
		res, err := mgr.Initiate(c, middleware.IdentityFrom(c), docID)
		switch {
		case err == nil:
		case errors.Is(err, settlement.ErrNotFound):
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			return
		case errors.Is(err, settlement.ErrSelfPurchase):
			redirectWithNotice(c, settings.DocumentURL(docID), types.NoticeCannotBuyOwnItem)
			return
		case errors.Is(err, settlement.ErrForbidden):
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, types.NoticeAuthenticationFirst.Message()))
			return
		case errors.Is(err, settlement.ErrProvider):
			lg.Warnw("buy_provider_failed", "document_id", docID, "error", err)
			redirectWithNotice(c, settings.DocumentURL(docID), types.NoticeProviderError)
			return
		default:
			lg.Errorw("buy_failed", "document_id", docID, "error", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}

		if res.Kind == settlement.InitiateFree {
			c.Redirect(http.StatusFound, settings.DownloadURL(docID))
			return
		}
		lg.Infow("buy_checkout",
			"document_id", docID,
			"purchase_id", res.PurchaseID,
			"funded_by", res.FundedBy,
			"marketplace_fee", res.MarketplaceFee.StringFixed(2),
			"notice", res.Notice,
		)
		setFlash(c, res.Notice)
		c.Redirect(http.StatusFound, res.CheckoutURL)
	}
}

// @Summary      Checkout return
// @Description  Browser return from the provider checkout. Reconciles the purchase and redirects to the download when approved.
// @Tags         Purchase
// @Param        document_id         path   int     true   "Document ID"
// @Param        payment_id          query  string  false  "Payment ID"
// @Param        collection_id       query  string  false  "Payment ID (legacy name)"
// @Param        external_reference  query  string  false  "purchase:<id>"
// @Success      302
// @Router       /payment/return/{document_id} [get]
func ApiPaymentReturn(mgr settlement.Manager, settings settlement.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		docID, ok := documentID(c)
		if !ok {
			return
		}
		res := mgr.HandleReturn(c, settlement.ReturnParams{
			DocumentID:        docID,
			PaymentID:         returnPaymentID(c),
			ExternalReference: c.Query("external_reference"),
			Caller:            middleware.IdentityFrom(c),
		})
		notice := res.Notice
		if notice == types.NoticeNone {
			notice = takeFlash(c)
		}
		if res.Approved {
			redirectWithNotice(c, settings.DownloadURL(docID), notice)
			return
		}
		redirectWithNotice(c, settings.DocumentURL(docID), notice)
	}
}

// returnPaymentID takes the first non-empty of the names the provider has
// used for the payment id over time.
func returnPaymentID(c *gin.Context) string {
	return firstNonEmpty(c.Query("payment_id"), c.Query("collection_id"), c.Query("id"))
}

func RegisterPurchaseRoutes(r gin.IRouter, mgr settlement.Manager, settings settlement.Settings, log *zap.SugaredLogger) {
	r.GET("/buy/:document_id", middleware.RequireAuth(), ApiBuy(mgr, settings, log))
	r.GET("/payment/return/:document_id", ApiPaymentReturn(mgr, settings))
}
