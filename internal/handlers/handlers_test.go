package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"receets-pos/internal/database"
	"receets-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the package-global connection at a fresh in-memory
// SQLite database. The DSN is named after the test so parallel packages
// and the GORM connection pool both see a single store per test.
func setupTestDB(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.Merchant{},
		&models.Location{},
		&models.Customer{},
		&models.Sale{},
		&models.LineItem{},
		&models.QRCode{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	database.DB = db
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.POST("/register", Register)
	r.PUT("/api/merchants/:id/settings", UpdateMerchantSettings)
	r.POST("/api/locations", CreateLocation)
	r.POST("/api/customers", CreateCustomer)
	r.POST("/api/sales", CreateSale)
	r.GET("/api/sales", GetEligibleSales)
	r.PATCH("/api/sales/:id", AmendSale)
	r.POST("/api/qrcode", IssueQRCode)
	r.GET("/api/qrcode", GetQRCode)
	r.POST("/api/qrcode/decode", DecodeQRCode)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// Fixtures

func seedMerchant(t *testing.T) models.Merchant {
	t.Helper()
	m := models.Merchant{
		BusinessName:     "Corner Shop",
		Email:            fmt.Sprintf("%s@example.com", uuid.NewString()),
		ReturnPeriodDays: 7,
	}
	if err := database.DB.Create(&m).Error; err != nil {
		t.Fatalf("seed merchant: %v", err)
	}
	return m
}

func seedLocation(t *testing.T, merchantID string) models.Location {
	t.Helper()
	l := models.Location{MerchantID: merchantID, Name: "Main Street"}
	if err := database.DB.Create(&l).Error; err != nil {
		t.Fatalf("seed location: %v", err)
	}
	return l
}

func seedCustomer(t *testing.T, merchantID, code string) models.Customer {
	t.Helper()
	c := models.Customer{MerchantID: merchantID, Name: "Shopper"}
	if code != "" {
		c.CustomerCode = &code
	}
	if err := database.DB.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}
