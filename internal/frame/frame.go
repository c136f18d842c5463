// Package frame decodes camera frames posted by the kiosk and names them for the object store.
package frame

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedImage is returned when a data URL cannot be decoded into image bytes.
var ErrMalformedImage = errors.New("malformed image")

// Mode tags how a frame entered the system.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// keyReplacer keeps worker ids from introducing path segments into object keys.
var keyReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

// DecodeDataURL returns the raw bytes of a "<prefix>,<base64 payload>" data URL.
// Only the first comma separates prefix and payload. Unpadded payloads are accepted,
// and an empty payload decodes to zero bytes.
func DecodeDataURL(dataURL string) ([]byte, error) {
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing data URL separator", ErrMalformedImage)
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return []byte{}, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(payload)
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedImage, err)
		}
	}
	return data, nil
}

// EncodeDataURL builds a base64 data URL for the given MIME type.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ObjectKey returns a unique object-store key: <mode>_<workerID>_<uuid>.jpg
func ObjectKey(mode Mode, workerID string) string {
	return fmt.Sprintf("%s_%s_%s.jpg", mode, keyReplacer.Replace(workerID), uuid.NewString())
}
