package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRCodePNG renders content as a PNG QR code of the given pixel size.
func QRCodePNG(content string, size int) ([]byte, error) {
	data, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return data, nil
}

// SaveQRCodePNG writes a QR code for content into dirPath and returns the
// full path of the written file.
func SaveQRCodePNG(content, dirPath, filename string, size int) (string, error) {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create QR directory: %w", err)
	}

	fullPath := filepath.Join(dirPath, filename)
	if err := qrcode.WriteFile(content, qrcode.Medium, size, fullPath); err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}
	return fullPath, nil
}

// SafeFilename maps an arbitrary identifier (usually an email address) to a
// filesystem-safe name: every character outside [a-zA-Z0-9] becomes '_'.
func SafeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
