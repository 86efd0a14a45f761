// Package datauri handles the inline attachment transport encoding:
// `data:<mimeType>;base64,<bytes>`. Payloads stay self-describing so a client
// can render them or re-derive a downloadable blob without a separate fetch.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const prefix = "data:"

var (
	ErrNotDataURI     = errors.New("payload is not a data URI")
	ErrInvalidPayload = errors.New("payload is not valid base64")
)

// Parse splits a data URI into its declared MIME type and decoded size in
// bytes. The payload itself is not returned; callers keep the encoded form.
func Parse(uri string) (mimeType string, sizeBytes int64, err error) {
	if !strings.HasPrefix(uri, prefix) {
		return "", 0, ErrNotDataURI
	}

	rest := strings.TrimPrefix(uri, prefix)
	meta, data, found := strings.Cut(rest, ",")
	if !found {
		return "", 0, ErrNotDataURI
	}

	if !strings.HasSuffix(meta, ";base64") {
		return "", 0, ErrNotDataURI
	}
	mimeType = strings.TrimSuffix(meta, ";base64")
	if mimeType == "" {
		return "", 0, ErrNotDataURI
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return mimeType, int64(len(decoded)), nil
}

// Encode builds a data URI from a MIME type and raw bytes.
func Encode(mimeType string, payload []byte) string {
	return prefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(payload)
}
