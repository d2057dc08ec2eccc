package qrtoken

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	encoded, err := Encode("merchant-1", "location-1", ActionReturn, 1700000000123)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	p, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.MerchantID != "merchant-1" || p.LocationID != "location-1" {
		t.Errorf("identity = %s/%s, want merchant-1/location-1", p.MerchantID, p.LocationID)
	}
	if p.Action != ActionReturn {
		t.Errorf("action = %q, want return", p.Action)
	}
	if p.TimestampMillis != 1700000000123 {
		t.Errorf("timestamp = %d, want 1700000000123", p.TimestampMillis)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "definitely not json"},
		{"wrong type", `"just a string"`},
		{"truncated", `{"merchantId":"m","locat`},
		{"missing identity", `{"action":"purchase","timestamp":1}`},
		{"unknown action", `{"merchantId":"m","locationId":"l","action":"teleport","timestamp":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.raw); err != ErrInvalidFormat {
				t.Errorf("Decode(%q) err = %v, want ErrInvalidFormat", tc.raw, err)
			}
		})
	}
}

// Unknown extra fields must not break decoding of a newer payload.
func TestDecodeIgnoresUnknownFields(t *testing.T) {
	raw := `{"merchantId":"m","locationId":"l","action":"purchase","timestamp":5,"signature":"future"}`
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.MerchantID != "m" || p.TimestampMillis != 5 {
		t.Errorf("payload = %+v", p)
	}
}

func TestRenderProducesDataURL(t *testing.T) {
	image, err := Render("m", "l", ActionPurchase, 1)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(image, "data:image/png;base64,") {
		t.Errorf("image is not a PNG data URL: %.40s", image)
	}
}

func TestNowMillisStrictlyIncreases(t *testing.T) {
	prev := NowMillis()
	for i := 0; i < 1000; i++ {
		next := NowMillis()
		if next <= prev {
			t.Fatalf("NowMillis went from %d to %d", prev, next)
		}
		prev = next
	}
}
