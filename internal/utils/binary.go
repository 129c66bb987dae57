package utils

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

// ErrNotText reports content that cannot be decoded as UTF-8 text.
var ErrNotText = errors.New("content is not valid UTF-8 text")

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	return bytes.IndexByte(data, 0) >= 0
}

// DecodeText returns data as a string, or ErrNotText when data looks binary.
func DecodeText(data []byte) (string, error) {
	if IsBinary(data) {
		return "", ErrNotText
	}
	return string(data), nil
}
