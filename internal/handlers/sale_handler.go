package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"receets-pos/internal/database"
	"receets-pos/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LineItemRequest is one product row as the POS terminal sends it.
type LineItemRequest struct {
	ProductID      string  `json:"product_id" binding:"required"`
	ProductName    string  `json:"product_name" binding:"required"`
	SKU            string  `json:"sku"`
	Price          float64 `json:"price" binding:"required,gt=0"`
	Quantity       int     `json:"quantity" binding:"required"`
	DiscountAmount float64 `json:"discount_amount" binding:"omitempty,gte=0"`
	TotalAmount    float64 `json:"total_amount"`
}

// SaleRequest defines what the POS sends to record a transaction.
type SaleRequest struct {
	MerchantID     string            `json:"merchant_id" binding:"required,uuid"`
	LocationID     string            `json:"location_id" binding:"required,uuid"`
	CustomerID     string            `json:"customer_id" binding:"omitempty,uuid"`
	CustomerCode   string            `json:"customer_code"`
	SaleType       string            `json:"sale_type" binding:"omitempty,oneof=PURCHASE RETURN EXCHANGE"`
	Status         string            `json:"status" binding:"omitempty,oneof=DRAFT IN_PROGRESS COMPLETED CANCELLED REFUNDED"`
	TotalAmount    float64           `json:"total_amount"`
	DiscountAmount float64           `json:"discount_amount" binding:"omitempty,gte=0"`
	TaxAmount      float64           `json:"tax_amount" binding:"omitempty,gte=0"`
	FinalAmount    float64           `json:"final_amount"`
	PromoCode      string            `json:"promo_code"`
	PaymentMethod  string            `json:"payment_method" binding:"omitempty,oneof=RECEETS_PAY APPLE_PAY GOOGLE_PAY CASH CARD NO_PAYMENT"`
	ReferenceID    string            `json:"reference_id"`
	ParentSaleID   string            `json:"parent_sale_id" binding:"omitempty,uuid"`
	LineItems      []LineItemRequest `json:"line_items" binding:"dive"`
}

// --- POST: Record a new sale ---
func CreateSale(c *gin.Context) {
	var req SaleRequest

	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	// 2. The merchant must exist before anything is written
	exists, err := database.MerchantExists(req.MerchantID)
	if err != nil {
		log.Println("Error checking merchant:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Merchant not found"})
		return
	}

	// 3. The location must exist AND belong to this merchant
	if _, err := database.LocationForMerchant(req.MerchantID, req.LocationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found or does not belong to this merchant"})
			return
		}
		log.Println("Error checking location:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	// 4. Resolve the customer code if no direct ID was given.
	// An unknown code does NOT block the sale - the linkage is best-effort.
	var customerID *string
	if req.CustomerID != "" {
		customerID = &req.CustomerID
	} else if req.CustomerCode != "" {
		customer, err := database.ResolveCustomer(req.MerchantID, "", req.CustomerCode)
		if err == nil {
			customerID = &customer.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Println("Error resolving customer:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
			return
		}
	}

	// 5. A return/exchange must point at a real parent sale of the SAME merchant
	var parentSaleID *string
	if req.ParentSaleID != "" {
		var parent models.Sale
		err := database.DB.Where("id = ? AND merchant_id = ?", req.ParentSaleID, req.MerchantID).
			First(&parent).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Parent sale not found or does not belong to this merchant"})
				return
			}
			log.Println("Error checking parent sale:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
			return
		}
		parentSaleID = &req.ParentSaleID
	}

	// 6. Defaults for anything the terminal left out
	saleType := req.SaleType
	if saleType == "" {
		saleType = models.SaleTypePurchase
	}
	status := req.Status
	if status == "" {
		status = models.SaleStatusDraft
	}

	lineItems := make([]models.LineItem, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		lineItems = append(lineItems, models.LineItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			Price:          item.Price,
			Quantity:       item.Quantity,
			DiscountAmount: item.DiscountAmount,
			TotalAmount:    item.TotalAmount,
		})
	}

	sale := models.Sale{
		MerchantID:     req.MerchantID,
		LocationID:     req.LocationID,
		CustomerID:     customerID,
		SaleType:       saleType,
		Status:         status,
		TotalAmount:    req.TotalAmount,
		DiscountAmount: req.DiscountAmount,
		TaxAmount:      req.TaxAmount,
		FinalAmount:    req.FinalAmount,
		PromoCode:      req.PromoCode,
		PaymentMethod:  req.PaymentMethod,
		ReferenceID:    req.ReferenceID,
		ParentSaleID:   parentSaleID,
		LineItems:      lineItems, // GORM inserts these in the same transaction
	}

	// 7. Save header + line items atomically (all or nothing)
	if err := database.DB.Create(&sale).Error; err != nil {
		log.Println("Error creating sale:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "sale": sale})
}

// --- GET: Sales a customer may still return ---
func GetEligibleSales(c *gin.Context) {
	merchantID := c.Query("merchant_id")
	customerID := c.Query("customer_id")
	customerCode := c.Query("customer_code")

	if merchantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Merchant ID is required"})
		return
	}
	if customerID == "" && customerCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either Customer ID or Customer Code is required"})
		return
	}

	// Lookback window in days, default one week, clamped to [1, 365]
	daysAgo := 7
	if raw := c.Query("days_ago"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days_ago must be a number"})
			return
		}
		daysAgo = parsed
	}
	if daysAgo < 1 {
		daysAgo = 1
	}
	if daysAgo > 365 {
		daysAgo = 365
	}

	// The read path has no best-effort fallback: an eligibility check
	// against an unknown customer is meaningless.
	if customerID == "" {
		customer, err := database.ResolveCustomer(merchantID, "", customerCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
				return
			}
			log.Println("Error resolving customer:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sales"})
			return
		}
		customerID = customer.ID
	}

	since := time.Now().AddDate(0, 0, -daysAgo)
	sales, err := database.EligibleSales(merchantID, customerID, since)
	if err != nil {
		log.Println("Error retrieving sales:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sales": sales})
}

// AmendSaleRequest carries a partial update. Pointers separate "field not
// sent" from "field set to its zero value" - in particular a nil LineItems
// leaves the existing items alone, while an empty list wipes them.
type AmendSaleRequest struct {
	SaleType       *string            `json:"sale_type" binding:"omitempty,oneof=PURCHASE RETURN EXCHANGE"`
	Status         *string            `json:"status" binding:"omitempty,oneof=DRAFT IN_PROGRESS COMPLETED CANCELLED REFUNDED"`
	TotalAmount    *float64           `json:"total_amount"`
	DiscountAmount *float64           `json:"discount_amount" binding:"omitempty,gte=0"`
	TaxAmount      *float64           `json:"tax_amount" binding:"omitempty,gte=0"`
	FinalAmount    *float64           `json:"final_amount"`
	PromoCode      *string            `json:"promo_code"`
	PaymentMethod  *string            `json:"payment_method" binding:"omitempty,oneof=RECEETS_PAY APPLE_PAY GOOGLE_PAY CASH CARD NO_PAYMENT"`
	ReferenceID    *string            `json:"reference_id"`
	LineItems      *[]LineItemRequest `json:"line_items" binding:"omitempty,dive"`
}

// --- PATCH: Amend an existing sale ---
// Provided fields overwrite, last write wins. A provided line item list
// replaces the full set (delete-all-then-insert).
func AmendSale(c *gin.Context) {
	saleID := c.Param("id")

	var req AmendSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	// 1. Find the existing sale
	var sale models.Sale
	if err := database.DB.First(&sale, "id = ?", saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
			return
		}
		log.Println("Error loading sale:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
		return
	}

	// 2. Collect only the fields that were actually sent
	updates := map[string]interface{}{}
	if req.SaleType != nil {
		updates["sale_type"] = *req.SaleType
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.TotalAmount != nil {
		updates["total_amount"] = *req.TotalAmount
	}
	if req.DiscountAmount != nil {
		updates["discount_amount"] = *req.DiscountAmount
	}
	if req.TaxAmount != nil {
		updates["tax_amount"] = *req.TaxAmount
	}
	if req.FinalAmount != nil {
		updates["final_amount"] = *req.FinalAmount
	}
	if req.PromoCode != nil {
		updates["promo_code"] = *req.PromoCode
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = *req.PaymentMethod
	}
	if req.ReferenceID != nil {
		updates["reference_id"] = *req.ReferenceID
	}

	// 3. Apply the update and the line item replacement in one transaction
	tx := database.DB.Begin()

	if len(updates) > 0 {
		if err := tx.Model(&sale).Updates(updates).Error; err != nil {
			tx.Rollback()
			log.Println("Error updating sale:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
			return
		}
	}

	if req.LineItems != nil {
		// Replace the full set: delete everything, insert what was sent
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.LineItem{}).Error; err != nil {
			tx.Rollback()
			log.Println("Error deleting line items:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
			return
		}

		for _, item := range *req.LineItems {
			lineItem := models.LineItem{
				SaleID:         sale.ID,
				ProductID:      item.ProductID,
				ProductName:    item.ProductName,
				SKU:            item.SKU,
				Price:          item.Price,
				Quantity:       item.Quantity,
				DiscountAmount: item.DiscountAmount,
				TotalAmount:    item.TotalAmount,
			}
			if err := tx.Create(&lineItem).Error; err != nil {
				tx.Rollback()
				log.Println("Error inserting line item:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
				return
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Println("Error committing sale update:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
		return
	}

	// 4. Return the post-amendment sale with its current items
	var updated models.Sale
	if err := database.DB.Preload("LineItems").First(&updated, "id = ?", sale.ID).Error; err != nil {
		log.Println("Error reloading sale:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sale": updated})
}
