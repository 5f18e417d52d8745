package lifecycle_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"rentora_backend/internal/model"
	"rentora_backend/pkg/lifecycle"
)

// memStore is an in-memory Store with the same compare-and-set semantics as
// the GORM implementation. The mutex makes every guarded write atomic, so
// concurrency tests exercise the real race behavior.
type memStore struct {
	mu sync.Mutex

	listings map[uint]*model.Listing
	payments map[uint]*model.Payment
	tiers    map[uint]*model.PackageTier
	apps     map[uint]*model.PackageApplication

	nextListingID uint
	nextPaymentID uint
	nextAppID     uint

	// waitingWrites counts guarded writes that landed with target waiting;
	// tests use it to assert a transition happened exactly once.
	waitingWrites int

	// beforeSetListingStatus, when set, runs inside the lock right before a
	// guarded listing write; tests use it to interleave a concurrent change.
	beforeSetListingStatus func(s *memStore)
}

func newMemStore() *memStore {
	return &memStore{
		listings: make(map[uint]*model.Listing),
		payments: make(map[uint]*model.Payment),
		tiers:    make(map[uint]*model.PackageTier),
		apps:     make(map[uint]*model.PackageApplication),
	}
}

func (s *memStore) addTier(t model.PackageTier) *model.PackageTier {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[t.ID] = &t
	return &t
}

func (s *memStore) addListing(l model.Listing) *model.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListingID++
	l.ID = s.nextListingID
	s.listings[l.ID] = &l
	cp := l
	return &cp
}

func (s *memStore) GetListing(ctx context.Context, id uint) (*model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *memStore) CreateListing(ctx context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListingID++
	l.ID = s.nextListingID
	cp := *l
	s.listings[l.ID] = &cp
	return nil
}

func (s *memStore) SetListingStatus(ctx context.Context, id uint, from, to model.ListingStatus, expiry *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.beforeSetListingStatus != nil {
		hook := s.beforeSetListingStatus
		s.beforeSetListingStatus = nil
		hook(s)
	}

	l, ok := s.listings[id]
	if !ok || l.Status != from {
		return false, nil
	}
	l.Status = to
	if expiry != nil {
		e := *expiry
		l.ExpiryDate = &e
	}
	if to == model.StatusWaiting {
		s.waitingWrites++
	}
	return true, nil
}

func (s *memStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []model.Listing
	for _, l := range s.listings {
		if l.Status == model.StatusAvailable && l.ExpiryDate != nil && !l.ExpiryDate.After(now) {
			due = append(due, *l)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ExpiryDate.Before(*due[j].ExpiryDate) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *memStore) GetPayment(ctx context.Context, id uint) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPaymentID++
	p.ID = s.nextPaymentID
	p.CreatedAt = time.Now()
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *memStore) CountPendingPayments(ctx context.Context, listingID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.payments {
		if p.ListingID == listingID && p.Status == model.PaymentPending {
			n++
		}
	}
	return n, nil
}

func (s *memStore) SetPaymentStatus(ctx context.Context, id uint, from, to model.PaymentStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (s *memStore) LatestPayment(ctx context.Context, listingID uint) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.Payment
	for _, p := range s.payments {
		if p.ListingID != listingID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = p
		}
	}
	if latest == nil {
		return nil, lifecycle.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *memStore) GetTier(ctx context.Context, id uint) (*model.PackageTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[id]
	if !ok {
		return nil, lifecycle.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) CreateApplication(ctx context.Context, a *model.PackageApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAppID++
	a.ID = s.nextAppID
	cp := *a
	s.apps[a.ID] = &cp
	return nil
}

func (s *memStore) ApplicationForPayment(ctx context.Context, paymentID uint) (*model.PackageApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apps {
		if a.PaymentID == paymentID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, lifecycle.ErrNotFound
}
