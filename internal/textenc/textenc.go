// Package textenc resolves the text encoding of raw file bytes and decodes
// them to a Go string. The detected encoding is read-only metadata for the
// session: all writes happen in UTF-8.
package textenc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Canonical encoding names returned by Detect.
const (
	UTF8    = "utf-8"
	UTF8BOM = "utf-8 bom"
	UTF16LE = "utf-16le"
	UTF16BE = "utf-16be"
	Latin1  = "windows-1252"
)

// Resolver determines a byte slice's text encoding and decodes it.
type Resolver interface {
	Detect(data []byte) string
	Decode(data []byte, name string) (string, error)
}

// NewResolver returns the default Resolver.
func NewResolver() Resolver {
	return resolver{}
}

type resolver struct{}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect returns the canonical name of the encoding data appears to use.
// Byte-order marks win; otherwise valid UTF-8 is assumed to be UTF-8 and
// anything else falls back to windows-1252, which decodes every byte.
func (resolver) Detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(data):
		return UTF8
	default:
		return Latin1
	}
}

// Decode decodes data as the named encoding. A leading byte-order mark is
// consumed, not carried into the result; the session re-handles marks at
// save-time normalization.
func (resolver) Decode(data []byte, name string) (string, error) {
	var enc encoding.Encoding
	switch name {
	case UTF8, UTF8BOM, "":
		text := string(bytes.TrimPrefix(data, bomUTF8))
		return strings.ToValidUTF8(text, string(utf8.RuneError)), nil
	case UTF16LE:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case Latin1:
		enc = charmap.Windows1252
	default:
		return "", fmt.Errorf("unsupported encoding %q", name)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return string(decoded), nil
}
