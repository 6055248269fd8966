package settlement

import (
	"context"
	"sync"

	"github.com/fatflowers/notemarket/internal/app/service/catalog"
	"github.com/fatflowers/notemarket/internal/app/service/ledger"
	"github.com/fatflowers/notemarket/internal/models"
	"github.com/fatflowers/notemarket/internal/platform/mercadopago"
	"github.com/fatflowers/notemarket/pkg/types"
)

type fakeLedger struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*models.Purchase
	writes int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{nextID: 1, rows: map[uint64]*models.Purchase{}}
}

func (l *fakeLedger) Create(ctx context.Context, p *models.Purchase) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p.ID = l.nextID
	l.nextID++
	cp := *p
	l.rows[p.ID] = &cp
	l.writes++
	return nil
}

func (l *fakeLedger) Get(ctx context.Context, id uint64) (*models.Purchase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.rows[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (l *fakeLedger) AttachPreference(ctx context.Context, id uint64, preferenceID string, feeCents int64, fundedBy types.FundingSource) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.rows[id]
	if !ok {
		return ledger.ErrNotFound
	}
	p.PreferenceID = &preferenceID
	p.MarketplaceFeeCents = feeCents
	p.FundedBy = fundedBy
	l.writes++
	return nil
}

func (l *fakeLedger) ApplyPayment(ctx context.Context, id uint64, u ledger.PaymentUpdate) (*models.Purchase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.rows[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	changed := false
	if u.PaymentID != "" && p.GetPaymentID() != u.PaymentID {
		pid := u.PaymentID
		p.PaymentID = &pid
		changed = true
	}
	if u.Status != "" && p.Status != u.Status {
		p.Status = u.Status
		changed = true
	}
	if changed {
		l.writes++
	}
	cp := *p
	return &cp, nil
}

func (l *fakeLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

func (l *fakeLedger) put(p *models.Purchase) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *p
	l.rows[p.ID] = &cp
	if p.ID >= l.nextID {
		l.nextID = p.ID + 1
	}
}

type fakeLinks struct {
	tokens map[string]string
}

func (f *fakeLinks) FundingCredential(ctx context.Context, sellerID string) (string, bool, error) {
	tok := f.tokens[sellerID]
	return tok, tok != "", nil
}

type fakeCatalog struct {
	docs map[uint64]*models.Document
}

func (f *fakeCatalog) Get(ctx context.Context, id uint64) (*models.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

type fakeProvider struct {
	mu         sync.Mutex
	prefReqs   []*mercadopago.PreferenceRequest
	prefTokens []string
	prefErr    error
	payments   map[string]*mercadopago.Payment
	getErr     error
	searches   map[string]*mercadopago.PaymentSearch
	searchErr  error
	getCalls   int
}

func (f *fakeProvider) CreatePreference(ctx context.Context, token string, req *mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefReqs = append(f.prefReqs, req)
	f.prefTokens = append(f.prefTokens, token)
	if f.prefErr != nil {
		return nil, f.prefErr
	}
	return &mercadopago.Preference{ID: "pref-" + req.ExternalReference, InitPoint: "https://mp.example/checkout/" + req.ExternalReference}, nil
}

func (f *fakeProvider) GetPayment(ctx context.Context, token, paymentID string) (*mercadopago.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, &mercadopago.ProviderError{Op: "get_payment", StatusCode: 404, Message: "not found"}
	}
	return p, nil
}

func (f *fakeProvider) SearchPaymentsByExternalReference(ctx context.Context, token, ref string) (*mercadopago.PaymentSearch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if s, ok := f.searches[ref]; ok {
		return s, nil
	}
	return &mercadopago.PaymentSearch{}, nil
}

type fakeNotes struct {
	mu      sync.Mutex
	entries []*models.PaymentNotificationLog
}

func (f *fakeNotes) Save(ctx context.Context, entry *models.PaymentNotificationLog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeNotes) last() *models.PaymentNotificationLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return nil
	}
	return f.entries[len(f.entries)-1]
}
