package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"receets-pos/internal/database"
	"receets-pos/internal/models"
	"receets-pos/internal/qrtoken"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QRCodeRequest defines what the dashboard sends to issue a location's code.
type QRCodeRequest struct {
	MerchantID string `json:"merchant_id" binding:"required,uuid"`
	LocationID string `json:"location_id" binding:"required,uuid"`
	Action     string `json:"action" binding:"omitempty,oneof=purchase return"`
}

// --- POST: Issue (or re-issue) the scannable code for a location ---
// Re-issuing overwrites the stored code in place: the location keeps a
// single QRCode row and the previous code value stops being the canonical
// pointer for that location.
func IssueQRCode(c *gin.Context) {
	var req QRCodeRequest

	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	action := req.Action
	if action == "" {
		action = qrtoken.ActionPurchase
	}

	// 2. The location must exist AND belong to this merchant
	if _, err := database.LocationForMerchant(req.MerchantID, req.LocationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found or does not belong to this merchant"})
			return
		}
		log.Println("Error checking location:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	// 3. Render the scannable image for this issuance
	issuedAt := qrtoken.NowMillis()
	image, err := qrtoken.Render(req.MerchantID, req.LocationID, action, issuedAt)
	if err != nil {
		log.Println("Error rendering QR code:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	// 4. Upsert the code record. The unique index on location_id is the
	// concurrency control: two racing issuances both land on the same row
	// and the store picks the winner.
	code := fmt.Sprintf("%s-%s-%d", req.MerchantID, req.LocationID, issuedAt)
	qr := models.QRCode{
		LocationID: req.LocationID,
		Code:       code,
		IsActive:   true,
	}
	err = database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"code":       code,
			"is_active":  true,
			"updated_at": time.Now(),
		}),
	}).Create(&qr).Error
	if err != nil {
		log.Println("Error saving QR code:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"qr_code": image,
		"code":    code,
	})
}

// --- GET: Fetch the current code for a location ---
// The row stores identity (merchant + location), not rendered pixels; the
// image is regenerated fresh on every fetch.
func GetQRCode(c *gin.Context) {
	locationID := c.Query("location_id")
	if locationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location ID is required"})
		return
	}

	var qr models.QRCode
	if err := database.DB.First(&qr, "location_id = ?", locationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "QR code not found for this location"})
			return
		}
		log.Println("Error loading QR code:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve QR code"})
		return
	}

	var location models.Location
	if err := database.DB.First(&location, "id = ?", qr.LocationID).Error; err != nil {
		log.Println("Error loading location for QR code:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve QR code"})
		return
	}

	image, err := qrtoken.Render(location.MerchantID, qr.LocationID, qrtoken.ActionPurchase, qrtoken.NowMillis())
	if err != nil {
		log.Println("Error rendering QR code:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"qr_code":   image,
		"code":      qr.Code,
		"is_active": qr.IsActive,
	})
}

// DecodeRequest carries a raw scanned payload.
type DecodeRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// --- POST: Decode a scanned payload ---
// Scanner input is arbitrary; anything that does not parse is a 400, never
// a crash.
func DecodeQRCode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	payload, err := qrtoken.Decode(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid QR code data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payload": payload,
	})
}
