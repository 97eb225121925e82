// internal/handlers/qr_test.go
package handlers

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinURLUsesPublicURL(t *testing.T) {
	t.Setenv("PUBLIC_URL", "https://play.example.com")
	assert.Equal(t, "https://play.example.com/?code=GAME", joinURL("GAME"))
}

func TestJoinURLDefaultsToLocalhost(t *testing.T) {
	t.Setenv("PUBLIC_URL", "")
	assert.Equal(t, "http://localhost:8080/?code=GAME", joinURL("GAME"))
}

func TestJoinQRDataURLIsValidPNG(t *testing.T) {
	dataURL, err := JoinQRDataURL("GAME")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), raw[:4])
}
