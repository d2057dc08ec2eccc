// Package qrtoken encodes and decodes the payload carried inside a
// location's scannable code, and renders it as an image.
//
// The payload is an identifier, not a capability: it carries merchant,
// location, action and an issuance timestamp, with no signature. Decode
// therefore only promises structural validity.
package qrtoken

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	ActionPurchase = "purchase"
	ActionReturn   = "return"

	// Rendered image width in pixels.
	imageSize = 300
)

// ErrInvalidFormat is returned when a scanned payload cannot be decoded.
var ErrInvalidFormat = errors.New("invalid qr payload format")

// Payload is the structured content of a scannable code. Field-tagged JSON
// keeps decoding forward-compatible with extra fields.
type Payload struct {
	MerchantID      string `json:"merchantId"`
	LocationID      string `json:"locationId"`
	Action          string `json:"action"`
	TimestampMillis int64  `json:"timestamp"`
}

// Encode serializes a payload for embedding in a scannable code.
func Encode(merchantID, locationID, action string, timestampMillis int64) (string, error) {
	p := Payload{
		MerchantID:      merchantID,
		LocationID:      locationID,
		Action:          action,
		TimestampMillis: timestampMillis,
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a scanned payload. Input comes from arbitrary scanners, so
// anything malformed or missing identity fields is ErrInvalidFormat, never
// a panic.
func Decode(raw string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, ErrInvalidFormat
	}
	if p.MerchantID == "" || p.LocationID == "" {
		return nil, ErrInvalidFormat
	}
	if p.Action != ActionPurchase && p.Action != ActionReturn {
		return nil, ErrInvalidFormat
	}
	return &p, nil
}

// Render encodes the payload and draws it as a square code (error
// correction level H, black on white) returned as a base64 PNG data URL
// ready for an <img> tag.
func Render(merchantID, locationID, action string, timestampMillis int64) (string, error) {
	payload, err := Encode(merchantID, locationID, action, timestampMillis)
	if err != nil {
		return "", err
	}

	png, err := qrcode.Encode(payload, qrcode.Highest, imageSize)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

var lastMillis int64

// NowMillis returns the current Unix time in milliseconds, bumped to be
// strictly greater than any value previously handed out by this process.
// Two issuances for the same location can therefore never mint the same
// code, even inside one millisecond.
func NowMillis() int64 {
	for {
		now := time.Now().UnixMilli()
		last := atomic.LoadInt64(&lastMillis)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastMillis, last, now) {
			return now
		}
	}
}
