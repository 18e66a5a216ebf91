package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"review-core/internal/model"
	"review-core/internal/review"
)

// SQLAccountStore implements review.AccountStore against the
// owned_accounts table. Only accounts on the configured network are
// visible to a review.
type SQLAccountStore struct {
	db        *gorm.DB
	networkID uint8
}

func NewSQLAccountStore(db *gorm.DB, networkID uint8) *SQLAccountStore {
	return &SQLAccountStore{db: db, networkID: networkID}
}

func (s *SQLAccountStore) ResolveOwnedAccounts(ctx context.Context) ([]review.OwnedAccount, error) {
	var rows []model.OwnedAccount
	err := s.db.WithContext(ctx).
		Where("network_id = ?", s.networkID).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query owned accounts: %w", err)
	}

	out := make([]review.OwnedAccount, 0, len(rows))
	for _, row := range rows {
		out = append(out, review.OwnedAccount{
			Address:       row.Address,
			DisplayLabel:  row.DisplayLabel,
			AppearanceTag: row.AppearanceTag,
		})
	}
	return out, nil
}

// AddOwnedAccount registers a wallet account so future reviews label it.
func (s *SQLAccountStore) AddOwnedAccount(ctx context.Context, address, label string, appearanceTag int) error {
	row := model.OwnedAccount{
		Address:       address,
		NetworkID:     s.networkID,
		DisplayLabel:  label,
		AppearanceTag: appearanceTag,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert owned account: %w", err)
	}
	return nil
}
