package qrcode

import (
	"encoding/base64"

	"folio/config"
	"folio/internal/domain/service"
	"folio/internal/errors"

	"github.com/skip2/go-qrcode"
)

const (
	defaultSize   = 256
	dataURLPrefix = "data:image/png;base64,"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	size, level := defaultSize, "M"
	if cfg != nil && cfg.QRCode != nil {
		if cfg.QRCode.Size > 0 {
			size = cfg.QRCode.Size
		}
		level = cfg.QRCode.ErrorCorrectionLevel
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: recoveryLevel(level),
	}
}

func recoveryLevel(name string) qrcode.RecoveryLevel {
	switch name {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// EncodePNG renders content as a square PNG of the configured size.
func (s *qrcodeService) EncodePNG(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr content is empty")
	}

	qrCode, err := qrcode.New(content, s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

func (s *qrcodeService) EncodeDataURL(content string) (string, error) {
	pngBytes, err := s.EncodePNG(content)
	if err != nil {
		return "", err
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(pngBytes), nil
}
