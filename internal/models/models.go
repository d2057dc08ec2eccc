package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale types
const (
	SaleTypePurchase = "PURCHASE"
	SaleTypeReturn   = "RETURN"
	SaleTypeExchange = "EXCHANGE"
)

// Sale statuses
const (
	SaleStatusDraft      = "DRAFT"
	SaleStatusInProgress = "IN_PROGRESS"
	SaleStatusCompleted  = "COMPLETED"
	SaleStatusCancelled  = "CANCELLED"
	SaleStatusRefunded   = "REFUNDED"
)

// Merchant - The business account. Created once at registration.
// Soft-deleted only; a merchant row is never hard-removed.
type Merchant struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	OwnerName        string         `gorm:"size:100" json:"owner_name"`
	BusinessName     string         `gorm:"size:100;not null" json:"business_name"`
	Email            string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash     string         `json:"-"` // Never return this in JSON
	Phone            string         `gorm:"size:30" json:"phone"`
	Address          string         `json:"address"`
	ReturnPeriodDays int            `gorm:"default:7" json:"return_period_days"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// Location - A physical store. Every location belongs to exactly one merchant.
type Location struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	MerchantID string    `gorm:"size:36;index;not null" json:"merchant_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Address    string    `json:"address"`
	Phone      string    `gorm:"size:30" json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}

// Customer - A shopper known to one merchant. CustomerCode is the
// human-readable code shown at the till; unique per merchant, not
// globally (two merchants can both have "VIP1").
type Customer struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	MerchantID   string    `gorm:"size:36;not null;uniqueIndex:idx_merchant_customer_code" json:"merchant_id"`
	CustomerCode *string   `gorm:"size:50;uniqueIndex:idx_merchant_customer_code" json:"customer_code,omitempty"`
	Name         string    `gorm:"size:100" json:"name"`
	Email        string    `gorm:"size:100" json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// Sale - The Transaction Header. A RETURN or EXCHANGE points at the
// original PURCHASE through ParentSaleID.
type Sale struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	MerchantID     string     `gorm:"size:36;index;not null" json:"merchant_id"`
	LocationID     string     `gorm:"size:36;not null" json:"location_id"`
	CustomerID     *string    `gorm:"size:36;index" json:"customer_id,omitempty"`
	SaleType       string     `gorm:"size:20;default:PURCHASE" json:"sale_type"`
	Status         string     `gorm:"size:20;default:DRAFT" json:"status"`
	TotalAmount    float64    `json:"total_amount"` // May be negative for refunds
	DiscountAmount float64    `json:"discount_amount"`
	TaxAmount      float64    `json:"tax_amount"`
	FinalAmount    float64    `json:"final_amount"` // May be negative for refunds
	PromoCode      string     `gorm:"size:50" json:"promo_code,omitempty"`
	PaymentMethod  string     `gorm:"size:30" json:"payment_method,omitempty"`
	ReferenceID    string     `gorm:"size:100" json:"reference_id,omitempty"`
	ParentSaleID   *string    `gorm:"size:36" json:"parent_sale_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LineItems      []LineItem `gorm:"foreignKey:SaleID" json:"line_items"`
	Location       *Location  `json:"location,omitempty"`
}

// LineItem - One product row on a sale. Owned exclusively by its Sale;
// amending a sale's items replaces the whole set.
type LineItem struct {
	ID             string  `gorm:"primaryKey;size:36" json:"id"`
	SaleID         string  `gorm:"size:36;index;not null" json:"sale_id"`
	ProductID      string  `gorm:"size:36;not null" json:"product_id"`
	ProductName    string  `gorm:"size:200;not null" json:"product_name"`
	SKU            string  `gorm:"size:100" json:"sku,omitempty"`
	Price          float64 `json:"price"` // Snapshot of price at time of sale
	Quantity       int     `json:"quantity"`
	DiscountAmount float64 `json:"discount_amount"`
	TotalAmount    float64 `json:"total_amount"`
}

// QRCode - The scannable token record for a location. One row per
// location (unique index); re-issuing updates it in place.
type QRCode struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	LocationID string    `gorm:"size:36;uniqueIndex;not null" json:"location_id"`
	Code       string    `gorm:"size:120;not null" json:"code"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UUID primary keys, assigned on insert when the caller left them blank.

func (m *Merchant) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (li *LineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == "" {
		li.ID = uuid.NewString()
	}
	return nil
}

func (q *QRCode) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
