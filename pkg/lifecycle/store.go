package lifecycle

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"rentora_backend/internal/model"
)

// Store is the persistence surface the lifecycle engine needs. The two
// SetXxxStatus methods are guarded writes: the update only lands if the row
// still holds the expected prior status, and the bool reports whether it did.
type Store interface {
	GetListing(ctx context.Context, id uint) (*model.Listing, error)
	CreateListing(ctx context.Context, l *model.Listing) error
	SetListingStatus(ctx context.Context, id uint, from, to model.ListingStatus, expiry *time.Time) (bool, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Listing, error)

	GetPayment(ctx context.Context, id uint) (*model.Payment, error)
	CreatePayment(ctx context.Context, p *model.Payment) error
	CountPendingPayments(ctx context.Context, listingID uint) (int64, error)
	SetPaymentStatus(ctx context.Context, id uint, from, to model.PaymentStatus) (bool, error)
	LatestPayment(ctx context.Context, listingID uint) (*model.Payment, error)

	GetTier(ctx context.Context, id uint) (*model.PackageTier, error)
	CreateApplication(ctx context.Context, a *model.PackageApplication) error
	ApplicationForPayment(ctx context.Context, paymentID uint) (*model.PackageApplication, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetListing(ctx context.Context, id uint) (*model.Listing, error) {
	var l model.Listing
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (s *gormStore) CreateListing(ctx context.Context, l *model.Listing) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *gormStore) SetListingStatus(ctx context.Context, id uint, from, to model.ListingStatus, expiry *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if expiry != nil {
		updates["expiry_date"] = *expiry
	}

	res := s.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Listing, error) {
	var listings []model.Listing
	err := s.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", model.StatusAvailable, now).
		Order("expiry_date").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

func (s *gormStore) GetPayment(ctx context.Context, id uint) (*model.Payment, error) {
	var p model.Payment
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *gormStore) CountPendingPayments(ctx context.Context, listingID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("listing_id = ? AND status = ?", listingID, model.PaymentPending).
		Count(&n).Error
	return n, err
}

func (s *gormStore) SetPaymentStatus(ctx context.Context, id uint, from, to model.PaymentStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) LatestPayment(ctx context.Context, listingID uint) (*model.Payment, error) {
	var p model.Payment
	err := s.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) GetTier(ctx context.Context, id uint) (*model.PackageTier, error) {
	var t model.PackageTier
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *gormStore) CreateApplication(ctx context.Context, a *model.PackageApplication) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *gormStore) ApplicationForPayment(ctx context.Context, paymentID uint) (*model.PackageApplication, error) {
	var a model.PackageApplication
	err := s.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
