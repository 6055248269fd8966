package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatflowers/notemarket/internal/app/service/catalog"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/pkg/types"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrPurchaseRequired denies an authenticated caller without an approved purchase.
	ErrPurchaseRequired = errors.New("purchase required")
)

type Reason string

const (
	ReasonFree          Reason = "free"
	ReasonSeller        Reason = "seller"
	ReasonPurchased     Reason = "purchased"
	ReasonAnonymous     Reason = "anonymous"
	ReasonNotPurchased  Reason = "not_purchased"
	ReasonNotApplicable Reason = ""
)

type Decision struct {
	Allowed bool
	Reason  Reason
	Notice  types.Notice
}

// Evaluate decides whether who may download doc right now. hasApproved
// tells whether an approved purchase exists for (who, doc).
func Evaluate(who *types.Identity, doc *models.Document, hasApproved bool) Decision {
	switch {
	case doc == nil:
		return Decision{Reason: ReasonNotApplicable}
	case !who.Authenticated():
		return Decision{Reason: ReasonAnonymous, Notice: types.NoticeAuthenticationFirst}
	case doc.IsFree():
		return Decision{Allowed: true, Reason: ReasonFree}
	case who.Is(doc.SellerID):
		return Decision{Allowed: true, Reason: ReasonSeller}
	case hasApproved:
		return Decision{Allowed: true, Reason: ReasonPurchased}
	default:
		return Decision{Reason: ReasonNotPurchased, Notice: types.NoticePurchaseRequired}
	}
}

type Documents interface {
	Get(ctx context.Context, id uint64) (*models.Document, error)
}

type Purchases interface {
	HasApproved(ctx context.Context, buyerID string, documentID uint64) (bool, error)
}

// Gate loads what Evaluate needs. Nothing is cached: every call sees the
// ledger as it is now.
type Gate struct {
	docs      Documents
	purchases Purchases
}

func NewGate(docs Documents, purchases Purchases) *Gate {
	return &Gate{docs: docs, purchases: purchases}
}

// Check returns the document together with the decision. Unlisted
// documents are reported as ErrNotFound to everyone, their seller included.
// The ledger is only consulted when the cheaper rules do not already decide.
func (g *Gate) Check(ctx context.Context, who *types.Identity, documentID uint64) (*models.Document, Decision, error) {
	doc, err := g.docs.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, Decision{}, fmt.Errorf("document %d: %w", documentID, ErrNotFound)
		}
		return nil, Decision{}, err
	}
	if !doc.IsActive {
		return nil, Decision{}, fmt.Errorf("document %d inactive: %w", documentID, ErrNotFound)
	}
	d := Evaluate(who, doc, false)
	if d.Allowed || d.Reason != ReasonNotPurchased {
		return doc, d, nil
	}
	ok, err := g.purchases.HasApproved(ctx, who.UserID, doc.ID)
	if err != nil {
		return doc, Decision{}, err
	}
	return doc, Evaluate(who, doc, ok), nil
}
