package database

import (
	"receets-pos/internal/models"
)

// ResolveCustomer finds a customer by direct ID or by the merchant-scoped
// customer code. A direct ID lookup still requires the customer to belong
// to the merchant: a cross-tenant ID is not found, not merely filtered.
// Codes are only ever meaningful inside one merchant, so the code path
// queries the (merchant_id, customer_code) composite key.
func ResolveCustomer(merchantID, customerID, customerCode string) (*models.Customer, error) {
	var customer models.Customer

	if customerID != "" {
		err := DB.Where("id = ? AND merchant_id = ?", customerID, merchantID).
			First(&customer).Error
		if err != nil {
			return nil, err
		}
		return &customer, nil
	}

	err := DB.Where("merchant_id = ? AND customer_code = ?", merchantID, customerCode).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
