package notification_log

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/tool"
)

// Service persists every payment signal the settlement engine sees.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a payment notification log. Nil input is
// ignored. The write is detached from ctx cancellation since callers
// usually return before it completes.
func (s *Service) Save(ctx context.Context, entry *models.PaymentNotificationLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	lg := logctx.FromCtx(ctx, s.log)
	go func() {
		if err := s.db.Create(entry).Error; err != nil {
			lg.Errorw("save_notification_log_failed", "id", entry.ID, "source", entry.Source, "err", err)
		}
	}()
}

// ListByPurchase returns the signals recorded for a purchase, newest first.
func (s *Service) ListByPurchase(ctx context.Context, purchaseID uint64, limit int) ([]*models.PaymentNotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []*models.PaymentNotificationLog
	err := s.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("notification_time DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
