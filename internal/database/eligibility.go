package database

import (
	"time"

	"receets-pos/internal/models"
)

// EligibleSales returns the COMPLETED sales of one customer at one merchant
// created at or after the cutoff, newest first, with line items and the
// location preloaded for display. The cutoff is inclusive: a sale created
// exactly at `since` is still returnable.
//
// Each call runs a fresh query; no cursor state is kept between calls.
func EligibleSales(merchantID, customerID string, since time.Time) ([]models.Sale, error) {
	var sales []models.Sale

	err := DB.
		Preload("LineItems").
		Preload("Location").
		Where("merchant_id = ? AND customer_id = ? AND status = ? AND created_at >= ?",
			merchantID, customerID, models.SaleStatusCompleted, since).
		Order("created_at DESC").
		Find(&sales).Error

	if err != nil {
		return nil, err
	}

	return sales, nil
}
