package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"receets-pos/internal/database"
	"receets-pos/internal/models"

	"github.com/google/uuid"
)

type qrResponse struct {
	Success  bool   `json:"success"`
	QRCode   string `json:"qr_code"`
	Code     string `json:"code"`
	IsActive bool   `json:"is_active"`
}

func TestIssueQRCode(t *testing.T) {
	setupTestDB(t)
	r := newRouter()
	m := seedMerchant(t)
	l := seedLocation(t, m.ID)

	w := doJSON(t, r, http.MethodPost, "/api/qrcode", map[string]interface{}{
		"merchant_id": m.ID,
		"location_id": l.ID,
		"action":      "purchase",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp qrResponse
	decodeBody(t, w, &resp)
	if !strings.HasPrefix(resp.QRCode, "data:image/png;base64,") {
		t.Errorf("qr_code is not a PNG data URL: %.40s", resp.QRCode)
	}
	wantPrefix := fmt.Sprintf("%s-%s-", m.ID, l.ID)
	if !strings.HasPrefix(resp.Code, wantPrefix) {
		t.Errorf("code = %q, want prefix %q", resp.Code, wantPrefix)
	}
}

func TestIssueQRCodeWrongMerchant(t *testing.T) {
	setupTestDB(t)
	r := newRouter()
	m := seedMerchant(t)
	other := seedMerchant(t)
	l := seedLocation(t, other.ID)

	w := doJSON(t, r, http.MethodPost, "/api/qrcode", map[string]interface{}{
		"merchant_id": m.ID,
		"location_id": l.ID,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

// Re-issuing must leave exactly one row per location, active, with a new
// code value replacing the old one.
func TestIssueQRCodeTwiceReplacesInPlace(t *testing.T) {
	setupTestDB(t)
	r := newRouter()
	m := seedMerchant(t)
	l := seedLocation(t, m.ID)

	issue := func() string {
		w := doJSON(t, r, http.MethodPost, "/api/qrcode", map[string]interface{}{
			"merchant_id": m.ID,
			"location_id": l.ID,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var resp qrResponse
		decodeBody(t, w, &resp)
		return resp.Code
	}

	first := issue()
	second := issue()

	if first == second {
		t.Errorf("second issuance reused code %q", first)
	}

	var rows []models.QRCode
	if err := database.DB.Where("location_id = ?", l.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load qr rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("qr rows for location = %d, want 1", len(rows))
	}
	if rows[0].Code != second {
		t.Errorf("stored code = %q, want latest %q", rows[0].Code, second)
	}
	if !rows[0].IsActive {
		t.Error("stored code is not active")
	}
}

func TestGetQRCode(t *testing.T) {
	setupTestDB(t)
	r := newRouter()
	m := seedMerchant(t)
	l := seedLocation(t, m.ID)

	t.Run("before any issuance", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/qrcode?location_id="+l.ID, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	w := doJSON(t, r, http.MethodPost, "/api/qrcode", map[string]interface{}{
		"merchant_id": m.ID,
		"location_id": l.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("issue status = %d", w.Code)
	}
	var issued qrResponse
	decodeBody(t, w, &issued)

	t.Run("after issuance", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/qrcode?location_id="+l.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}
		var resp qrResponse
		decodeBody(t, w, &resp)
		if resp.Code != issued.Code {
			t.Errorf("code = %q, want stored %q", resp.Code, issued.Code)
		}
		if !resp.IsActive {
			t.Error("is_active = false, want true")
		}
		// Image is regenerated from identity, not cached bytes
		if !strings.HasPrefix(resp.QRCode, "data:image/png;base64,") {
			t.Errorf("qr_code is not a PNG data URL: %.40s", resp.QRCode)
		}
	})

	t.Run("missing location id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/qrcode", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestDecodeQRCodeEndpoint(t *testing.T) {
	setupTestDB(t)
	r := newRouter()

	payload := fmt.Sprintf(`{"merchantId":%q,"locationId":%q,"action":"return","timestamp":1700000000000}`,
		uuid.NewString(), uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/api/qrcode/decode", map[string]interface{}{
		"payload": payload,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	t.Run("garbage input", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/qrcode/decode", map[string]interface{}{
			"payload": "not-a-payload",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}
