// Package textutil turns raw file bytes into UTF-8 text for diffing.
package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Source names the step of the fallback chain that produced the text.
type Source string

const (
	// SourceUTF8 means the input was already valid UTF-8.
	SourceUTF8 Source = "utf-8"
	// SourceDetected means a BOM or content sniffing chose the decoder.
	SourceDetected Source = "detected"
	// SourceLatin means the input was read as Windows-1252.
	SourceLatin Source = "windows-1252"
	// SourceLossy means invalid UTF-8 sequences were dropped.
	SourceLossy Source = "lossy"
)

// Decoded is the outcome of DecodeText.
type Decoded struct {
	Text     string
	Source   Source
	Encoding string // charset name when Source is SourceDetected
}

// DecodeText converts b to UTF-8 using, in order: the bytes as-is when they
// are valid UTF-8; the encoding detected from a BOM or content sniffing;
// Windows-1252; and finally UTF-8 with invalid sequences dropped.
// b is never modified.
func DecodeText(b []byte) Decoded {
	if utf8.Valid(b) {
		return Decoded{Text: string(b), Source: SourceUTF8}
	}
	if enc, name, _ := charset.DetermineEncoding(b, "text/plain"); enc != nil && !isUTF8(enc) {
		if out, err := decodeWith(enc, b); err == nil {
			// BOM-sniffed UTF-16 decoders may leave the mark in place.
			out = strings.TrimPrefix(out, "\ufeff")
			return Decoded{Text: out, Source: SourceDetected, Encoding: name}
		}
	}
	if out, err := decodeWith(charmap.Windows1252, b); err == nil {
		return Decoded{Text: out, Source: SourceLatin}
	}
	return Decoded{Text: strings.ToValidUTF8(string(b), ""), Source: SourceLossy}
}

// String is DecodeText(b).Text.
func String(b []byte) string {
	return DecodeText(b).Text
}

func decodeWith(enc encoding.Encoding, b []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) {
		return strings.ToValidUTF8(string(out), ""), nil
	}
	return string(out), nil
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8 || enc == encoding.Nop
}
