package qrcode

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"folio/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURI = "otpauth://totp/Tech2Saini%20Portfolio:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Tech2Saini%20Portfolio"

func newConfig(size int, level string) *config.Config {
	return &config.Config{QRCode: &config.QRCodeConfig{Size: size, ErrorCorrectionLevel: level}}
}

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		errorCorrectionLevel string
	}{
		{"Low error correction", "L"},
		{"Medium error correction", "M"},
		{"High error correction", "Q"},
		{"Highest error correction", "H"},
		{"Default error correction", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(newConfig(256, tt.errorCorrectionLevel))
			assert.NotNil(t, service)
		})
	}

	assert.NotNil(t, NewQRCodeService(nil))
}

func TestQRCodeService_EncodePNG(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Small QR", 128},
		{"Medium QR", 256},
		{"Large QR", 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(newConfig(tt.size, "M"))

			qrBytes, err := service.EncodePNG(testURI)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(qrBytes))
			require.NoError(t, err)
			assert.Equal(t, tt.size, img.Bounds().Dx())
		})
	}
}

func TestQRCodeService_EncodePNG_EmptyContent(t *testing.T) {
	service := NewQRCodeService(newConfig(256, "M"))

	_, err := service.EncodePNG("")
	assert.Error(t, err)
}

func TestQRCodeService_EncodeDataURL(t *testing.T) {
	service := NewQRCodeService(newConfig(256, "M"))

	dataURL, err := service.EncodeDataURL(testURI)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}
