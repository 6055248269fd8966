package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/logctx"
	"github.com/fatflowers/notemarket/pkg/types"
)

var ErrNotFound = errors.New("purchase not found")

// ScanFields are the columns admin listings may filter and sort on.
var ScanFields = []string{
	"id", "buyer_id", "document_id", "amount_cents", "status",
	"preference_id", "payment_id", "marketplace_fee_cents", "funded_by",
	"created_at", "updated_at",
}

// PaymentUpdate is an observed provider state. Empty fields are left untouched.
type PaymentUpdate struct {
	PaymentID string
	Status    types.PurchaseStatus
}

type ScanRequest struct {
	Filters   types.CommonFilters `json:"filters"`
	From      int                 `json:"from"`
	Size      int                 `json:"size"`
	SortBy    string              `json:"sort_by"`
	SortOrder string              `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Purchase `json:"items"`
	Total int64              `json:"total"`
}

// Service is the purchase ledger. Rows are never deleted.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Create inserts a pending purchase and fills its id.
func (s *Service) Create(ctx context.Context, p *models.Purchase) error {
	if p == nil {
		return fmt.Errorf("nil purchase")
	}
	if p.Status == "" {
		p.Status = types.PurchaseStatusPending
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*models.Purchase, error) {
	var p models.Purchase
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get purchase %d: %w", id, err)
	}
	return &p, nil
}

// AttachPreference records the provider preference and the fee/funding
// snapshot it was created with.
func (s *Service) AttachPreference(ctx context.Context, id uint64, preferenceID string, feeCents int64, fundedBy types.FundingSource) error {
	res := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"preference_id":         preferenceID,
			"marketplace_fee_cents": feeCents,
			"funded_by":             fundedBy,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to attach preference to purchase %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyPayment locks the row and writes the non-empty fields of u. The
// returned purchase reflects the row after the write.
func (s *Service) ApplyPayment(ctx context.Context, id uint64, u PaymentUpdate) (*models.Purchase, error) {
	var out *models.Purchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Purchase
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		updates := map[string]any{}
		if u.PaymentID != "" && p.GetPaymentID() != u.PaymentID {
			updates["payment_id"] = u.PaymentID
		}
		if u.Status != "" && p.Status != u.Status {
			updates["status"] = u.Status
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Purchase{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
			if u.PaymentID != "" {
				pid := u.PaymentID
				p.PaymentID = &pid
			}
			if u.Status != "" {
				p.Status = u.Status
			}
			logctx.FromCtx(ctx, s.log).Infow("purchase_payment_applied", "purchase_id", id, "updates", updates)
		}
		out = &p
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to apply payment to purchase %d: %w", id, err)
	}
	return out, nil
}

// HasApproved reports whether buyerID holds an approved purchase of documentID.
func (s *Service) HasApproved(ctx context.Context, buyerID string, documentID uint64) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("buyer_id = ? AND document_id = ? AND status = ?", buyerID, documentID, types.PurchaseStatusApproved).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check approved purchase: %w", err)
	}
	return n > 0, nil
}

// ListStalePending returns pending purchases created before cutoff, oldest first.
func (s *Service) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*models.Purchase, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []*models.Purchase
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", types.PurchaseStatusPending, cutoff).
		Order("created_at").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending purchases: %w", err)
	}
	return rows, nil
}

// CancelIfPending moves a purchase created before cutoff to cancelled, but
// only while it is still pending.
func (s *Service) CancelIfPending(ctx context.Context, id uint64, cutoff time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND status = ? AND created_at < ?", id, types.PurchaseStatusPending, cutoff).
		Update("status", types.PurchaseStatusCancelled)
	if res.Error != nil {
		return false, fmt.Errorf("failed to cancel purchase %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Scan implements paginated admin listing with filters.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Model(&models.Purchase{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{req.Filters}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	var rows []*models.Purchase
	q := tx.Limit(req.Size).Offset(req.From).
		Order(clause.OrderByColumn{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"})
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}

func (r *ScanRequest) normalize() error {
	if err := r.Filters.Validate(ScanFields); err != nil {
		return err
	}
	if r.Size <= 0 || r.Size > 500 {
		r.Size = 20
	}
	if r.From < 0 {
		r.From = 0
	}
	if r.SortBy == "" {
		r.SortBy = "created_at"
	}
	for _, f := range ScanFields {
		if f == r.SortBy {
			return nil
		}
	}
	return fmt.Errorf("sort field not allowed: %q", r.SortBy)
}
