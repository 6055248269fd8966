package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/internal/app/service/statistics"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/response"
	"github.com/fatflowers/notemarket/pkg/tool"
	"github.com/fatflowers/notemarket/pkg/types"
)

// PurchaseScanner is satisfied by *ledger.Service.
type PurchaseScanner interface {
	Scan(ctx context.Context, req *ledger.ScanRequest) (*ledger.ScanResponse, error)
}

// NotificationLister is satisfied by *notification_log.Service.
type NotificationLister interface {
	ListByPurchase(ctx context.Context, purchaseID uint64, limit int) ([]*models.PaymentNotificationLog, error)
}

// StatisticsProvider is satisfied by *statistics.Service.
type StatisticsProvider interface {
	GetStatistic(ctx context.Context, request *statistics.StatisticRequest) (*statistics.StatisticResponse, error)
}

type ListPurchasesRequest struct {
	Filters   types.CommonFilters `json:"filters"`
	From      int                 `json:"from"`
	Size      int                 `json:"size"`
	SortBy    string              `json:"sort_by"`
	SortOrder string              `json:"sort_order"`
}

type PurchaseItem struct {
	ID             uint64               `json:"id"`
	BuyerID        string               `json:"buyer_id"`
	DocumentID     uint64               `json:"document_id"`
	AmountCents    int64                `json:"amount_cents"`
	Amount         string               `json:"amount"`
	Status         types.PurchaseStatus `json:"status"`
	PreferenceID   *string              `json:"preference_id"`
	PaymentID      *string              `json:"payment_id"`
	MarketplaceFee string               `json:"marketplace_fee"`
	FundedBy       types.FundingSource  `json:"funded_by"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func toPurchaseItem(p *models.Purchase) *PurchaseItem {
	return &PurchaseItem{
		ID:             p.ID,
		BuyerID:        p.BuyerID,
		DocumentID:     p.DocumentID,
		AmountCents:    p.AmountCents,
		Amount:         tool.MinorToMajor(p.AmountCents).StringFixed(2),
		Status:         p.Status,
		PreferenceID:   p.PreferenceID,
		PaymentID:      p.PaymentID,
		MarketplaceFee: tool.MinorToMajor(p.MarketplaceFeeCents).StringFixed(2),
		FundedBy:       p.FundedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type ListPurchasesResponse struct {
	Items []*PurchaseItem `json:"items"`
	Total int64           `json:"total"`
}

func scanPurchases(c *gin.Context, scanner PurchaseScanner, req *ledger.ScanRequest) {
	res, err := scanner.Scan(c, req)
	if err != nil {
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
		return
	}
	items := lo.Map(res.Items, func(p *models.Purchase, _ int) *PurchaseItem { return toPurchaseItem(p) })
	c.JSON(http.StatusOK, response.OKT(&ListPurchasesResponse{Items: items, Total: res.Total}))
}

// @Summary      List purchases (Admin)
// @Description  Paginated, filterable list of the purchase ledger.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListPurchasesRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespListPurchases
// @Router       /api/v1/admin/purchases/list [post]
func ApiListPurchases(scanner PurchaseScanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListPurchasesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		scanPurchases(c, scanner, &ledger.ScanRequest{
			Filters:   req.Filters,
			From:      req.From,
			Size:      req.Size,
			SortBy:    req.SortBy,
			SortOrder: req.SortOrder,
		})
	}
}

// @Summary      Sync a purchase (Admin)
// @Description  Looks the purchase up at the provider by its reference and applies what is found.
// @Tags         Admin
// @Produce      json
// @Param        id  path  int  true  "Purchase ID"
// @Success      200  {object}  handlers.RespSyncPurchase
// @Router       /api/v1/admin/purchases/{id}/sync [post]
func ApiSyncPurchase(mgr settlement.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}
		res, err := mgr.SyncPurchase(c, id)
		if err != nil {
			code := response.APIResponseCodeError
			if errors.Is(err, settlement.ErrNotFound) {
				code = response.APIResponseCodeNotFound
			}
			c.JSON(http.StatusOK, response.ErrorT[any](code, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Purchase notifications (Admin)
// @Description  Payment signals recorded for a purchase, newest first.
// @Tags         Admin
// @Produce      json
// @Param        id     path   int  true   "Purchase ID"
// @Param        limit  query  int  false  "Max rows (default 50)"
// @Success      200  {object}  handlers.RespPurchaseNotifications
// @Router       /api/v1/admin/purchases/{id}/notifications [get]
func ApiListPurchaseNotifications(lister NotificationLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			return
		}
		rows, err := lister.ListByPurchase(c, id, queryInt(c, "limit", 50))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Sales statistics (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.StatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespStatistic
// @Router       /api/v1/admin/statistics [post]
func ApiGetStatistic(svc StatisticsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.StatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetStatistic(c, &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, scanner PurchaseScanner, mgr settlement.Manager, lister NotificationLister, stats StatisticsProvider) {
	r.POST("/purchases/list", ApiListPurchases(scanner))
	r.POST("/purchases/:id/sync", ApiSyncPurchase(mgr))
	r.GET("/purchases/:id/notifications", ApiListPurchaseNotifications(lister))
	r.POST("/statistics", ApiGetStatistic(stats))
}
