package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/api/middleware"
	"github.com/fatflowers/notemarket/internal/app/service/merchantlink"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/response"
	"github.com/fatflowers/notemarket/pkg/tool"
	"github.com/fatflowers/notemarket/pkg/types"
)

const oauthStateCookie = "mp_oauth_state"

// MerchantLinker is satisfied by *merchantlink.Service.
type MerchantLinker interface {
	Connect(ctx context.Context, sellerID, code string) (*models.MerchantLink, error)
	Unlink(ctx context.Context, sellerID string) error
	Status(ctx context.Context, sellerID string) (*merchantlink.Status, error)
}

// Authorizer is satisfied by *mercadopago.Client.
type Authorizer interface {
	AuthorizeURL(state string) string
}

// @Summary      Link a seller account
// @Description  Redirects the seller to the provider authorization page.
// @Tags         Merchant
// @Success      302
// @Failure      401  {object}  handlers.RespOK
// @Router       /merchant/connect [get]
func ApiMerchantConnect(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := tool.NewTraceID()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(oauthStateCookie, state, 600, "/merchant", "", c.Request.TLS != nil, true)
		c.Redirect(http.StatusFound, auth.AuthorizeURL(state))
	}
}

// @Summary      Authorization callback
// @Description  Exchanges the authorization code and stores the seller credentials.
// @Tags         Merchant
// @Param        code   query  string  true  "Authorization code"
// @Param        state  query  string  true  "Value issued by /merchant/connect"
// @Success      302
// @Router       /merchant/oauth/callback [get]
func ApiMerchantOAuthCallback(links MerchantLinker, settings settlement.Settings, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromCtx(c, log)
		who := middleware.IdentityFrom(c)

		expected, _ := c.Cookie(oauthStateCookie)
		c.SetCookie(oauthStateCookie, "", -1, "/merchant", "", c.Request.TLS != nil, true)
		if state := c.Query("state"); expected == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
			lg.Warnw("merchant_link_state_mismatch")
			redirectWithNotice(c, settings.ProfileURL(), types.NoticeMerchantLinkFailed)
			return
		}
		code := c.Query("code")
		if code == "" {
			redirectWithNotice(c, settings.ProfileURL(), types.NoticeMerchantLinkFailed)
			return
		}
		link, err := links.Connect(c, who.UserID, code)
		if err != nil {
			lg.Warnw("merchant_link_failed", "error", err)
			redirectWithNotice(c, settings.ProfileURL(), types.NoticeMerchantLinkFailed)
			return
		}
		lg.Infow("merchant_linked", "mp_user_id", link.MPUserID)
		redirectWithNotice(c, settings.ProfileURL(), types.NoticeMerchantLinked)
	}
}

// @Summary      Unlink a seller account
// @Description  Clears the stored provider credentials. Later sales fall back to platform funding.
// @Tags         Merchant
// @Success      302
// @Router       /merchant/disconnect [post]
// @Router       /merchant/disconnect [get]
func ApiMerchantDisconnect(links MerchantLinker, settings settlement.Settings, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := middleware.IdentityFrom(c)
		if err := links.Unlink(c, who.UserID); err != nil {
			logctx.FromCtx(c, log).Errorw("merchant_unlink_failed", "error", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		redirectWithNotice(c, settings.ProfileURL(), types.NoticeMerchantUnlinked)
	}
}

// @Summary      Seller link status
// @Tags         Merchant
// @Produce      json
// @Success      200  {object}  handlers.RespMerchantLinkStatus
// @Router       /api/v1/merchant/link [get]
func ApiMerchantLinkStatus(links MerchantLinker) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := links.Status(c, middleware.IdentityFrom(c).UserID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(st))
	}
}

func RegisterMerchantRoutes(r gin.IRouter, links MerchantLinker, auth Authorizer, settings settlement.Settings, log *zap.SugaredLogger) {
	g := r.Group("/merchant", middleware.RequireAuth())
	g.GET("/connect", ApiMerchantConnect(auth))
	g.GET("/oauth/callback", ApiMerchantOAuthCallback(links, settings, log))
	disconnect := ApiMerchantDisconnect(links, settings, log)
	g.POST("/disconnect", disconnect)
	g.GET("/disconnect", disconnect)
}

func RegisterMerchantAPIRoutes(r gin.IRouter, links MerchantLinker) {
	r.GET("/merchant/link", middleware.RequireAuth(), ApiMerchantLinkStatus(links))
}
