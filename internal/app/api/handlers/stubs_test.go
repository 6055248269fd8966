package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/notemarket/internal/app/api/middleware"
	"github.com/fatflowers/notemarket/internal/app/service/access"
	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/app/service/merchantlink"
	"github.com/fatflowers/notemarket/internal/app/service/settlement"
	"github.com/fatflowers/notemarket/internal/app/service/statistics"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/config"
	"github.com/fatflowers/notemarket/pkg/types"
)

var nopLog = zap.NewNop().Sugar()

var testSettings = settlement.Settings{
	Site: config.SiteConfig{
		BaseURL:         "https://notes.test",
		DocumentPath:    "/documents",
		ProfilePath:     "/profile",
		DownloadBaseURL: "https://files.test/store",
	},
}

// newRouter returns a test engine that authenticates every request as who
// (nil means anonymous).
func newRouter(who *types.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if who != nil {
			c.Set(middleware.KeyIdentity, who)
		}
		c.Next()
	})
	return r
}

func serve(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.NotNil(t, w)
	return w
}

var (
	buyer  = &types.Identity{UserID: "buyer-1", Role: types.RoleUser}
	seller = &types.Identity{UserID: "seller-1", Role: types.RoleUser}
	admin  = &types.Identity{UserID: "admin-1", Role: types.RoleAdmin}
)

type stubManager struct {
	initiateRes *settlement.InitiateResult
	initiateErr error
	gotBuyer    *types.Identity
	gotDocument uint64

	returnRes *settlement.ReturnResult
	gotReturn settlement.ReturnParams

	notifications []settlement.NotificationParams

	syncRes *settlement.SyncResult
	syncErr error
	gotSync uint64
}

func (s *stubManager) Initiate(_ context.Context, who *types.Identity, documentID uint64) (*settlement.InitiateResult, error) {
	s.gotBuyer, s.gotDocument = who, documentID
	return s.initiateRes, s.initiateErr
}

func (s *stubManager) HandleReturn(_ context.Context, p settlement.ReturnParams) *settlement.ReturnResult {
	s.gotReturn = p
	if s.returnRes == nil {
		return &settlement.ReturnResult{Notice: types.NoticePaymentRegistered}
	}
	return s.returnRes
}

func (s *stubManager) HandleNotification(_ context.Context, p settlement.NotificationParams) *settlement.NotificationResult {
	s.notifications = append(s.notifications, p)
	return &settlement.NotificationResult{PaymentID: p.PaymentID}
}

func (s *stubManager) SyncPurchase(_ context.Context, id uint64) (*settlement.SyncResult, error) {
	s.gotSync = id
	return s.syncRes, s.syncErr
}

type stubGate struct {
	doc      *models.Document
	decision access.Decision
	err      error
}

func (s *stubGate) Check(context.Context, *types.Identity, uint64) (*models.Document, access.Decision, error) {
	return s.doc, s.decision, s.err
}

type stubLinks struct {
	connectErr error
	gotSeller  string
	gotCode    string
	unlinked   []string
	status     *merchantlink.Status
}

func (s *stubLinks) Connect(_ context.Context, sellerID, code string) (*models.MerchantLink, error) {
	s.gotSeller, s.gotCode = sellerID, code
	if s.connectErr != nil {
		return nil, s.connectErr
	}
	return &models.MerchantLink{SellerID: sellerID, MPUserID: "mp-1", AccessToken: "tok"}, nil
}

func (s *stubLinks) Unlink(_ context.Context, sellerID string) error {
	s.unlinked = append(s.unlinked, sellerID)
	return nil
}

func (s *stubLinks) Status(_ context.Context, sellerID string) (*merchantlink.Status, error) {
	s.gotSeller = sellerID
	if s.status == nil {
		return &merchantlink.Status{}, nil
	}
	return s.status, nil
}

type stubAuthorizer struct{ state string }

func (s *stubAuthorizer) AuthorizeURL(state string) string {
	s.state = state
	return "https://auth.test/authorization?state=" + state
}

type stubScanner struct {
	got *ledger.ScanRequest
	res *ledger.ScanResponse
	err error
}

func (s *stubScanner) Scan(_ context.Context, req *ledger.ScanRequest) (*ledger.ScanResponse, error) {
	s.got = req
	if s.res == nil && s.err == nil {
		return &ledger.ScanResponse{}, nil
	}
	return s.res, s.err
}

type stubLister struct {
	gotID    uint64
	gotLimit int
}

func (s *stubLister) ListByPurchase(_ context.Context, purchaseID uint64, limit int) ([]*models.PaymentNotificationLog, error) {
	s.gotID, s.gotLimit = purchaseID, limit
	return []*models.PaymentNotificationLog{{ID: "n1", TransactionID: "pay-1"}}, nil
}

type stubStats struct{ called bool }

func (s *stubStats) GetStatistic(context.Context, *statistics.StatisticRequest) (*statistics.StatisticResponse, error) {
	s.called = true
	return &statistics.StatisticResponse{DataItems: map[statistics.StatisticType][]statistics.StatisticResponseDataItem{
		statistics.StatisticTypeDailyGmv: {{Date: "2026-01-01", Value: 1000}},
	}}, nil
}

type stubBreaker struct{}

func (stubBreaker) BreakerState() string { return "closed" }
