package service

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/skip2/go-qrcode"
)

// QRPayload is the JSON document encoded into payment QR codes. It carries
// a payment identifier only; there is no signature or settlement data.
type QRPayload struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Timestamp string  `json:"timestamp"`
	Shop      string  `json:"shop"`
}

// QRBuilder builds payment QR payloads, both as a hosted-image URL and as
// a locally rendered PNG.
type QRBuilder struct {
	endpoint string
	now      func() time.Time
}

// NewQRBuilder creates a builder for the given hosted QR image endpoint
func NewQRBuilder(endpoint string) *QRBuilder {
	return &QRBuilder{endpoint: endpoint, now: time.Now}
}

func (b *QRBuilder) payload(paymentID string, amount float64, shop string) ([]byte, error) {
	return json.Marshal(QRPayload{
		Type:      "payment",
		ID:        paymentID,
		Amount:    amount,
		Timestamp: b.now().Format(time.RFC3339),
		Shop:      shop,
	})
}

// ImageURL returns the hosted QR image URL for a payment. Failures of the
// remote endpoint are detected by the image consumer, not here.
func (b *QRBuilder) ImageURL(paymentID string, amount float64, shop string) (string, error) {
	data, err := b.payload(paymentID, amount, shop)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr payload: %w", err)
	}

	q := url.Values{}
	q.Set("size", "250x250")
	q.Set("data", string(data))
	q.Set("format", "png")
	return b.endpoint + "?" + q.Encode(), nil
}

// PNG renders the payment QR code locally as a 250x250 PNG
func (b *QRBuilder) PNG(paymentID string, amount float64, shop string) ([]byte, error) {
	data, err := b.payload(paymentID, amount, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr payload: %w", err)
	}
	return qrcode.Encode(string(data), qrcode.Medium, 250)
}
