package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fatflowers/notemarket/internal/app/api/middleware"
	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/pkg/types"
)

// @Summary      My purchases
// @Description  The caller's purchases, newest first.
// @Tags         Purchase
// @Produce      json
// @Param        from    query  int     false  "Offset"
// @Param        size    query  int     false  "Page size (default 20)"
// @Param        status  query  string  false  "Only purchases in this status"
// @Success      200  {object}  handlers.RespListPurchases
// @Router       /api/v1/purchases [get]
func ApiMyPurchases(scanner PurchaseScanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := middleware.IdentityFrom(c)
		filters := types.CommonFilters{
			{Field: "buyer_id", Operator: types.CommonFilterOperatorEq, Values: []any{who.UserID}},
		}
		if st := c.Query("status"); st != "" {
			filters = append(filters, &types.CommonFilter{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{st}})
		}
		scanPurchases(c, scanner, &ledger.ScanRequest{
			Filters:   filters,
			From:      queryInt(c, "from", 0),
			Size:      queryInt(c, "size", 20),
			SortBy:    "created_at",
			SortOrder: "desc",
		})
	}
}

func RegisterUserRoutes(r gin.IRouter, scanner PurchaseScanner) {
	r.GET("/purchases", middleware.RequireAuth(), ApiMyPurchases(scanner))
}
