// utils/qr.go
package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// GenerateMembershipQR builds the front-desk check-in QR pass for an active
// membership and returns it as a base64-encoded PNG. The payload embeds the
// subscription id so the desk scanner can look up validity.
func GenerateMembershipQR(userID, subscriptionID string) (string, error) {
	content := fmt.Sprintf("gymfit://member/%s/subscription/%s", userID, subscriptionID)

	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	qrCode, err = barcode.Scale(qrCode, 256, 256)
	if err != nil {
		return "", fmt.Errorf("failed to scale QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
