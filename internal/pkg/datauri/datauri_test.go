package datauri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	payload := []byte("hello attachment bytes")
	uri := Encode("application/pdf", payload)

	mimeType, sizeBytes, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mimeType)
	assert.Equal(t, int64(len(payload)), sizeBytes)
}

func TestParseEmptyPayload(t *testing.T) {
	mimeType, sizeBytes, err := Parse("data:image/png;base64,")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, int64(0), sizeBytes)
}

func TestParseRejectsMalformedURIs(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr error
	}{
		{"plain url", "https://example.com/file.pdf", ErrNotDataURI},
		{"missing comma", "data:image/png;base64", ErrNotDataURI},
		{"missing base64 marker", "data:image/png,aGVsbG8=", ErrNotDataURI},
		{"empty mime type", "data:;base64,aGVsbG8=", ErrNotDataURI},
		{"empty string", "", ErrNotDataURI},
		{"bad base64", "data:image/png;base64,not!!valid##", ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.uri)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	uri := Encode("image/png", payload)

	mimeType, sizeBytes, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, int64(len(payload)), sizeBytes)
}
