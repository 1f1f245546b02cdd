package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var imageAllowedMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// uploadError carries the HTTP status for a rejected upload.
type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string { return e.message }

func badUpload(status int, format string, args ...interface{}) *uploadError {
	return &uploadError{status: status, message: fmt.Sprintf(format, args...)}
}

// checkImage decodes a base64 image (optionally a data URL) and checks its
// size, detected type, and pixel count. It returns the bare base64 payload
// and the detected MIME type.
func checkImage(encoded string, maxBytes int64, maxPixels int) (string, string, *uploadError) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i > 0 {
			encoded = encoded[i+1:]
		}
	}
	if encoded == "" {
		return "", "", badUpload(http.StatusBadRequest, "image_base64 is required")
	}
	if int64(base64.StdEncoding.DecodedLen(len(encoded))) > maxBytes+2 {
		return "", "", badUpload(http.StatusRequestEntityTooLarge, "image exceeds %d bytes", maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", badUpload(http.StatusBadRequest, "image_base64 is not valid base64")
	}
	if int64(len(data)) > maxBytes {
		return "", "", badUpload(http.StatusRequestEntityTooLarge, "image exceeds %d bytes", maxBytes)
	}

	detected := mimetype.Detect(data).String()
	if !imageAllowedMimes[detected] {
		return "", "", badUpload(http.StatusUnsupportedMediaType,
			"MIME type %s is not allowed. Allowed: jpeg, png, webp, gif", detected)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", "", badUpload(http.StatusBadRequest, "image could not be decoded")
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return "", "", badUpload(http.StatusBadRequest,
			"image is %dx%d; at most %d pixels are allowed", cfg.Width, cfg.Height, maxPixels)
	}
	return encoded, detected, nil
}

// isAudio reports whether the sniffed type is a recording format.
func isAudio(data []byte) (string, bool) {
	m := mimetype.Detect(data)
	if strings.HasPrefix(m.String(), "audio/") || m.Is("video/webm") || m.Is("video/mp4") || m.Is("application/ogg") {
		return m.String(), true
	}
	return m.String(), false
}
