package service

// QRCodeService renders provisioning payloads as scannable images.
type QRCodeService interface {
	// EncodePNG renders content as a PNG image.
	EncodePNG(content string) ([]byte, error)

	// EncodeDataURL renders content as a base64 PNG data URL suitable for an <img> src.
	EncodeDataURL(content string) (string, error)
}
