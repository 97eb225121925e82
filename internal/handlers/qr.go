// internal/handlers/qr.go
package handlers

import (
	"encoding/base64"
	"fmt"
	"os"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/google/uuid"

	"github.com/trolleyparty/trolley/internal/game"
)

// joinURL builds the link a phone lands on to join a room. PUBLIC_URL should
// be the externally reachable base in deployments.
func joinURL(code string) string {
	base := os.Getenv("PUBLIC_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return fmt.Sprintf("%s/?code=%s", base, code)
}

// JoinQRDataURL renders the join link as a PNG QR code packed into a data
// URL the host screen can drop straight into an <img>.
func JoinQRDataURL(code string) (string, error) {
	png, err := qrcode.Encode(joinURL(code), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to encode join QR for room %s: %w", code, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// sendJoinQR delivers the QR payload to a host connection. Failure only
// costs the host screen its QR image, so it is logged and swallowed.
func (s *Server) sendJoinQR(connID uuid.UUID, code string) {
	dataURL, err := JoinQRDataURL(code)
	if err != nil {
		s.Logger.Warnf("Room %s: %v", code, err)
		return
	}
	s.sendEvent(connID, game.Event{
		Type:    game.EventQRCodeData,
		Payload: map[string]interface{}{"dataUrl": dataURL},
	})
}
