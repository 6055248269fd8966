package merchantlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
	"github.com/fatflowers/notemarket/pkg/logctx"
)

// expirySkew is subtracted from the provider's expires_in so a token is
// never used in its last minute.
const expirySkew = 60 * time.Second

// OAuthProvider is the part of the payment adapter the link store needs.
type OAuthProvider interface {
	ExchangeCode(ctx context.Context, code string) (*mercadopago.OAuthToken, error)
	RefreshToken(ctx context.Context, refreshToken string) (*mercadopago.OAuthToken, error)
}

// Status is the public view of a link; it never carries tokens.
type Status struct {
	Linked    bool       `json:"linked"`
	MPUserID  string     `json:"mp_user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.SugaredLogger
	oauth OAuthProvider
	now   func() time.Time
}

func New(db *gorm.DB, log *zap.SugaredLogger, client *mercadopago.Client) *Service {
	return NewService(db, log, client)
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, oauth OAuthProvider) *Service {
	return &Service{db: db, log: log, oauth: oauth, now: time.Now}
}

// Get returns the seller's link, or nil when the seller never linked.
func (s *Service) Get(ctx context.Context, sellerID string) (*models.MerchantLink, error) {
	var m models.MerchantLink
	err := s.db.WithContext(ctx).Where("seller_id = ?", sellerID).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load merchant link: %w", err)
	}
	return &m, nil
}

func (s *Service) Status(ctx context.Context, sellerID string) (*Status, error) {
	m, err := s.Get(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if !m.Linked() {
		return &Status{}, nil
	}
	return &Status{Linked: true, MPUserID: m.MPUserID, ExpiresAt: m.ExpiresAt, Expired: m.Expired(s.now())}, nil
}

// Connect exchanges an OAuth authorization code and stores the result as
// the seller's link, replacing any previous one.
func (s *Service) Connect(ctx context.Context, sellerID, code string) (*models.MerchantLink, error) {
	tok, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	m := s.fromToken(sellerID, tok)
	if err := s.save(ctx, m); err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("merchant_linked", "seller_id", sellerID, "mp_user_id", m.MPUserID)
	return m, nil
}

// Unlink empties every credential field. The row itself is kept.
func (s *Service) Unlink(ctx context.Context, sellerID string) error {
	err := s.db.WithContext(ctx).Model(&models.MerchantLink{}).
		Where("seller_id = ?", sellerID).
		Updates(map[string]any{
			"mp_user_id":    "",
			"access_token":  "",
			"refresh_token": "",
			"expires_at":    nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to unlink merchant: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("merchant_unlinked", "seller_id", sellerID)
	return nil
}

// FundingCredential returns the seller's usable access token. ok is false
// when the sale must fall back to the platform credential: the seller is
// not linked, or the token expired and could not be refreshed.
func (s *Service) FundingCredential(ctx context.Context, sellerID string) (token string, ok bool, err error) {
	m, err := s.Get(ctx, sellerID)
	if err != nil {
		return "", false, err
	}
	token, refreshed := s.usableToken(ctx, m)
	if refreshed != nil {
		if err := s.save(ctx, refreshed); err != nil {
			logctx.FromCtx(ctx, s.log).Warnw("merchant_token_refresh_persist_failed", "seller_id", sellerID, "err", err)
		}
	}
	return token, token != "", nil
}

// usableToken decides which token to use for m at the current time. When
// a refresh happened the updated link is returned for persistence.
func (s *Service) usableToken(ctx context.Context, m *models.MerchantLink) (string, *models.MerchantLink) {
	if !m.Linked() {
		return "", nil
	}
	if !m.Expired(s.now()) {
		return m.AccessToken, nil
	}
	lg := logctx.FromCtx(ctx, s.log)
	if m.RefreshToken == "" {
		lg.Warnw("merchant_token_expired", "seller_id", m.SellerID, "refreshable", false)
		return "", nil
	}
	tok, err := s.oauth.RefreshToken(ctx, m.RefreshToken)
	if err != nil {
		lg.Warnw("merchant_token_refresh_failed", "seller_id", m.SellerID, "err", err)
		return "", nil
	}
	refreshed := s.fromToken(m.SellerID, tok)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = m.RefreshToken
	}
	if refreshed.MPUserID == "" {
		refreshed.MPUserID = m.MPUserID
	}
	lg.Infow("merchant_token_refreshed", "seller_id", m.SellerID)
	return refreshed.AccessToken, refreshed
}

func (s *Service) fromToken(sellerID string, tok *mercadopago.OAuthToken) *models.MerchantLink {
	m := &models.MerchantLink{
		SellerID:     sellerID,
		MPUserID:     tok.UserID.String(),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if tok.ExpiresIn > 0 {
		exp := s.now().Add(time.Duration(tok.ExpiresIn)*time.Second - expirySkew)
		m.ExpiresAt = &exp
	}
	return m
}

func (s *Service) save(ctx context.Context, m *models.MerchantLink) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seller_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"mp_user_id", "access_token", "refresh_token", "expires_at", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to save merchant link: %w", err)
	}
	return nil
}
