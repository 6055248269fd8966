package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fatflowers/notemarket/internal/models"
)

var ErrNotFound = errors.New("document not found")

// Service is a read-only view of listed documents.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// Get loads a document regardless of its active flag.
func (s *Service) Get(ctx context.Context, id uint64) (*models.Document, error) {
	var d models.Document
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %d: %w", id, err)
	}
	return &d, nil
}
