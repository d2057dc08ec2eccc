package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"receets-pos/internal/database"
	"receets-pos/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest mirrors the merchant sign-up form.
type RegisterRequest struct {
	Name         string `json:"name" binding:"required,min=2"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	BusinessName string `json:"business_name" binding:"required,min=2"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	ReturnPeriod int    `json:"return_period"`
}

// --- POST: Register a new merchant ---
// Creates the merchant account and its first location together. Logins and
// sessions live outside this service; only the credential hash is stored.
func Register(c *gin.Context) {
	var req RegisterRequest

	// 1. Parse JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	// Return period defaults to a week, clamped to [1, 365]
	returnPeriod := req.ReturnPeriod
	if returnPeriod == 0 {
		returnPeriod = 7
	}
	if returnPeriod < 1 || returnPeriod > 365 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "return_period must be between 1 and 365"})
		return
	}

	// 2. Hash the Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Error hashing password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register merchant"})
		return
	}

	merchant := models.Merchant{
		OwnerName:        req.Name,
		BusinessName:     req.BusinessName,
		Email:            strings.ToLower(req.Email),
		PasswordHash:     string(hashedPassword),
		Phone:            req.Phone,
		Address:          req.Address,
		ReturnPeriodDays: returnPeriod,
	}

	// 3. Create merchant + first location in one transaction
	tx := database.DB.Begin()

	if err := tx.Create(&merchant).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Merchant likely already exists"})
		return
	}

	location := models.Location{
		MerchantID: merchant.ID,
		Name:       req.BusinessName,
		Address:    req.Address,
		Phone:      req.Phone,
	}
	if err := tx.Create(&location).Error; err != nil {
		tx.Rollback()
		log.Println("Error creating location:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register merchant"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Println("Error committing registration:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register merchant"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"merchant": merchant,
		"location": location,
	})
}

// MerchantSettingsRequest is a partial update; nil means "leave alone".
type MerchantSettingsRequest struct {
	OwnerName        *string `json:"owner_name" binding:"omitempty,min=2"`
	BusinessName     *string `json:"business_name" binding:"omitempty,min=2"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	ReturnPeriodDays *int    `json:"return_period_days" binding:"omitempty,min=1,max=365"`
}

// --- PUT: Update merchant settings ---
func UpdateMerchantSettings(c *gin.Context) {
	merchantID := c.Param("id")

	var merchant models.Merchant
	if err := database.DB.First(&merchant, "id = ?", merchantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Merchant not found"})
			return
		}
		log.Println("Error loading merchant:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update merchant"})
		return
	}

	var req MerchantSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.OwnerName != nil {
		updates["owner_name"] = *req.OwnerName
	}
	if req.BusinessName != nil {
		updates["business_name"] = *req.BusinessName
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(*req.Email)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ReturnPeriodDays != nil {
		updates["return_period_days"] = *req.ReturnPeriodDays
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&merchant).Updates(updates).Error; err != nil {
			log.Println("Error updating merchant:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update merchant"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "merchant": merchant})
}

// LocationRequest defines a new store location.
type LocationRequest struct {
	MerchantID string `json:"merchant_id" binding:"required,uuid"`
	Name       string `json:"name" binding:"required,min=2"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
}

// --- POST: Add a location to a merchant ---
func CreateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	exists, err := database.MerchantExists(req.MerchantID)
	if err != nil {
		log.Println("Error checking merchant:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create location"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Merchant not found"})
		return
	}

	location := models.Location{
		MerchantID: req.MerchantID,
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
	}
	if err := database.DB.Create(&location).Error; err != nil {
		log.Println("Error creating location:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create location"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "location": location})
}

// CustomerRequest defines a new customer of one merchant.
type CustomerRequest struct {
	MerchantID   string `json:"merchant_id" binding:"required,uuid"`
	CustomerCode string `json:"customer_code"`
	Name         string `json:"name"`
	Email        string `json:"email" binding:"omitempty,email"`
}

// --- POST: Add a customer to a merchant ---
// The customer code is optional, but when present it must be unique
// within the merchant (the same code can exist under other merchants).
func CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	exists, err := database.MerchantExists(req.MerchantID)
	if err != nil {
		log.Println("Error checking merchant:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Merchant not found"})
		return
	}

	customer := models.Customer{
		MerchantID: req.MerchantID,
		Name:       req.Name,
		Email:      req.Email,
	}
	if code := strings.TrimSpace(req.CustomerCode); code != "" {
		customer.CustomerCode = &code
	}

	if err := database.DB.Create(&customer).Error; err != nil {
		// Unique index violation on (merchant_id, customer_code)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer code already in use for this merchant"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "customer": customer})
}
