package handlers

import (
	"github.com/fatflowers/notemarket/internal/app/service/merchantlink"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/internal/app/service/statistics"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespListPurchases struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListPurchasesResponse    `json:"data"`
}

type RespSyncPurchase struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    settlement.SyncResult    `json:"data"`
}

type RespPurchaseNotifications struct {
	Code    response.APIResponseCode        `json:"code"`
	Message string                          `json:"message"`
	Data    []models.PaymentNotificationLog `json:"data"`
}

type RespStatistic struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    statistics.StatisticResponse `json:"data"`
}

type RespDocument struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    DocumentView             `json:"data"`
}

type RespMerchantLinkStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    merchantlink.Status      `json:"data"`
}

type RespFees struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    FeesView                 `json:"data"`
}
