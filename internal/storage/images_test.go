package storage

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadDataURI(t *testing.T) {
	raw := []byte("fake-png-bytes")
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	data, contentType, err := decodePayload(payload)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	assert.Equal(t, "image/png", contentType)
}

func TestDecodePayloadBareBase64(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff}
	data, contentType, err := decodePayload(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	assert.Equal(t, "image/jpeg", contentType, "bare payloads default to jpeg")
}

func TestDecodePayloadInvalid(t *testing.T) {
	_, _, err := decodePayload("!!not-base64!!")
	assert.Error(t, err)

	_, _, err = decodePayload("data:image/png;base64")
	assert.Error(t, err, "data uri without a comma is malformed")
}

func TestKeyFromURL(t *testing.T) {
	s := &ImageStore{publicURL: "https://img.test"}

	key, ok := s.keyFromURL("https://img.test/books/2026/09/01/abc")
	require.True(t, ok)
	assert.Equal(t, "books/2026/09/01/abc", key)

	_, ok = s.keyFromURL("https://elsewhere.example/pic.png")
	assert.False(t, ok)

	_, ok = s.keyFromURL("https://img.test/")
	assert.False(t, ok, "empty key is not a stored object")

	assert.True(t, s.Owns("https://img.test/books/k"))
	assert.False(t, s.Owns("https://api.dicebear.com/9.x/avataaars/svg?seed=reader"))
}

func TestNewObjectKeyShape(t *testing.T) {
	k1 := newObjectKey()
	k2 := newObjectKey()
	assert.True(t, strings.HasPrefix(k1, "books/"))
	assert.NotEqual(t, k1, k2, "keys must be unique")
}
