package statistics

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/types"
)

type StatisticType string

const (
	StatisticTypeDailyPurchaseCount StatisticType = "daily_purchase_count"
	StatisticTypeDailyGmv           StatisticType = "daily_gmv"
	StatisticTypeDailyPlatformFee   StatisticType = "daily_platform_fee"
	StatisticTypeTotalGmv           StatisticType = "total_gmv"
	StatisticTypeStatusBreakdown    StatisticType = "status_breakdown"
)

// FilterFields are the purchase columns statistic filters may use.
var FilterFields = []string{"document_id", "buyer_id", "funded_by", "status", "created_at"}

// statusScoped statistics only ever count approved sales; a status filter
// is dropped for them.
var statusScoped = []StatisticType{
	StatisticTypeDailyGmv,
	StatisticTypeDailyPlatformFee,
	StatisticTypeTotalGmv,
}

type StatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StatisticRequest struct {
	Filters   types.CommonFilters  `json:"filters"`
	DataItems []*StatisticDataItem `json:"data_items"`
}

func (r *StatisticRequest) Validate() error {
	if r == nil || len(r.DataItems) == 0 {
		return fmt.Errorf("no data items requested")
	}
	return r.Filters.Validate(FilterFields)
}

// filtersFor returns the filters that apply to statisticType.
func (r *StatisticRequest) filtersFor(statisticType StatisticType) types.CommonFilters {
	if !lo.Contains(statusScoped, statisticType) {
		return r.Filters
	}
	return lo.Filter(r.Filters, func(f *types.CommonFilter, _ int) bool { return f.Field != "status" })
}

type StatisticResponseDataItem struct {
	Date   string `json:"date,omitempty"`
	Label  string `json:"label,omitempty"`
	Value  int64  `json:"value"`
	Value2 int64  `json:"value2,omitempty"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

// Service provides sales statistics over the purchase ledger.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) purchases(ctx context.Context, filters types.CommonFilters) *gorm.DB {
	return s.db.WithContext(ctx).Table((models.Purchase{}).TableName()).
		Where(clause.Where{Exprs: []clause.Expression{filters}})
}

func (s *Service) getDailyPurchaseCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.purchases(ctx, request.filtersFor(StatisticTypeDailyPurchaseCount)).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value, count(*) FILTER (WHERE status = ?) as value2", types.PurchaseStatusApproved).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getDailyGmv sums approved amounts per day and funding source, in cents.
func (s *Service) getDailyGmv(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.purchases(ctx, request.filtersFor(StatisticTypeDailyGmv)).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, funded_by AS label, sum(amount_cents) as value").
		Where("status = ?", types.PurchaseStatusApproved).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("funded_by").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyPlatformFee(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.purchases(ctx, request.filtersFor(StatisticTypeDailyPlatformFee)).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, sum(marketplace_fee_cents) as value").
		Where("status = ?", types.PurchaseStatusApproved).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getTotalGmv is the running total of approved sales for every day between
// the first and the last purchase.
func (s *Service) getTotalGmv(ctx context.Context, _ *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH min_max_dates AS (
    SELECT MIN(DATE(created_at)) as min_date, MAX(DATE(created_at)) as max_date
    FROM purchases
),
dates AS (
    SELECT TO_CHAR(generate_series(min_date, max_date, '1 day'::interval), 'YYYY-MM-DD') as date FROM min_max_dates
),
gmv_date AS (
    SELECT d.date, COALESCE(SUM(p.amount_cents), 0) as value
    FROM dates d
    LEFT JOIN purchases p
      ON TO_CHAR(p.created_at, 'YYYY-MM-DD') = d.date
     AND p.status = ?
    GROUP BY d.date
)
SELECT d.date as date, SUM(s.value) as value
FROM gmv_date d
LEFT JOIN gmv_date s ON s.date <= d.date
GROUP BY d.date
ORDER BY d.date DESC
`, types.PurchaseStatusApproved).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatusBreakdown(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.purchases(ctx, request.filtersFor(StatisticTypeStatusBreakdown)).
		Select("status AS label, count(*) as value, COALESCE(sum(amount_cents), 0) as value2").
		Group("status").
		Order("value DESC")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, request *StatisticRequest, dataItem *StatisticDataItem) ([]StatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPurchaseCount:
		return s.getDailyPurchaseCount(ctx, request)
	case StatisticTypeDailyGmv:
		return s.getDailyGmv(ctx, request)
	case StatisticTypeDailyPlatformFee:
		return s.getDailyPlatformFee(ctx, request)
	case StatisticTypeTotalGmv:
		return s.getTotalGmv(ctx, request)
	case StatisticTypeStatusBreakdown:
		return s.getStatusBreakdown(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetStatistic computes every requested data item concurrently.
func (s *Service) GetStatistic(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []StatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		go func(di *StatisticDataItem) {
			res, err := s.getStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []StatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	results := make(map[StatisticType][]StatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			return nil, err
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &StatisticResponse{DataItems: results}, nil
}
