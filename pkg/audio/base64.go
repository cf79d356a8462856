// Package audio handles the opaque audio payloads exchanged with the speech
// providers. Audio is never interpreted here, only carried as bytes or as
// standard base64 text inside JSON bodies.
package audio

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultMIMEType is the format returned by the synthesis provider.
const DefaultMIMEType = "audio/mpeg"

// Encode returns the standard base64 form of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode parses base64 text produced by Encode or by a provider. Surrounding
// whitespace is ignored.
func Decode(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("decoding base64 audio: %w", err)
	}
	return data, nil
}
