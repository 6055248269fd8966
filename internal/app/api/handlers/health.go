package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/notemarket/pkg/response"
)

// BreakerReporter is satisfied by *mercadopago.Client.
type BreakerReporter interface {
	BreakerState() string
}

// @Summary      Health check
// @Description  Returns service status and the payment provider circuit state.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func Healthz(provider BreakerReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(map[string]string{
			"status":   "ok",
			"provider": provider.BreakerState(),
		}))
	}
}

func RegisterHealthRoutes(r gin.IRouter, provider BreakerReporter) {
	r.GET("/healthz", Healthz(provider))
}
