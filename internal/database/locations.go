package database

import (
	"receets-pos/internal/models"
)

// LocationForMerchant loads a location only if it is owned by the given
// merchant. A location that exists under a different merchant is treated
// the same as one that does not exist at all (gorm.ErrRecordNotFound) -
// ownership is part of the key, not a filter.
func LocationForMerchant(merchantID, locationID string) (*models.Location, error) {
	var location models.Location
	err := DB.Where("id = ? AND merchant_id = ?", locationID, merchantID).
		First(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// MerchantExists checks that a merchant row is present (and not soft-deleted).
func MerchantExists(merchantID string) (bool, error) {
	var count int64
	err := DB.Model(&models.Merchant{}).Where("id = ?", merchantID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
