package service

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQRBuilder() *QRBuilder {
	b := NewQRBuilder("https://api.qrserver.com/v1/create-qr-code/")
	b.now = func() time.Time { return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC) }
	return b
}

func TestImageURLEncodesPayload(t *testing.T) {
	b := newTestQRBuilder()

	raw, err := b.ImageURL("PAY123", 160, "Pa Ple Kitchen")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw, "https://api.qrserver.com/v1/create-qr-code/?"))

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "250x250", q.Get("size"))
	assert.Equal(t, "png", q.Get("format"))

	var payload QRPayload
	require.NoError(t, json.Unmarshal([]byte(q.Get("data")), &payload))
	assert.Equal(t, "payment", payload.Type)
	assert.Equal(t, "PAY123", payload.ID)
	assert.Equal(t, 160.0, payload.Amount)
	assert.Equal(t, "Pa Ple Kitchen", payload.Shop)
	assert.Equal(t, "2025-06-01T12:30:00Z", payload.Timestamp)
}

func TestPNGRendersImage(t *testing.T) {
	b := newTestQRBuilder()

	png, err := b.PNG("PAY123", 160, "Pa Ple Kitchen")
	require.NoError(t, err)
	require.NotEmpty(t, png)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
