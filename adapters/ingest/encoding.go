package ingest

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"labchart/domain/core"

	"golang.org/x/text/encoding/charmap"
)

// Encoding names the character encoding of an input file.
type Encoding string

const (
	EncodingAuto   Encoding = "auto"
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// ParseEncoding maps a configuration string onto an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "auto":
		return EncodingAuto, nil
	case "utf-8", "utf8", "UTF-8":
		return EncodingUTF8, nil
	case "latin-1", "latin1", "iso-8859-1", "ISO-8859-1":
		return EncodingLatin1, nil
	}
	return "", core.NewInvalidParameterError("encoding", fmt.Sprintf("unsupported encoding %q", s))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode turns raw bytes into text. Auto tries UTF-8 and falls back to Latin-1 when the
// bytes are not valid UTF-8. It returns the encoding actually used.
func decode(data []byte, enc Encoding) (string, Encoding, error) {
	switch enc {
	case EncodingAuto, "":
		if utf8.Valid(data) {
			return string(bytes.TrimPrefix(data, utf8BOM)), EncodingUTF8, nil
		}
		text, err := decodeLatin1(data)
		return text, EncodingLatin1, err
	case EncodingUTF8:
		if off := invalidUTF8Offset(data); off >= 0 {
			end := off + 16
			if end > len(data) {
				end = len(data)
			}
			return "", enc, &core.EncodingError{Encoding: string(enc), Offset: off, Snippet: string(data[off:end])}
		}
		return string(bytes.TrimPrefix(data, utf8BOM)), enc, nil
	case EncodingLatin1:
		text, err := decodeLatin1(data)
		return text, enc, err
	}
	return "", enc, core.NewInvalidParameterError("encoding", fmt.Sprintf("unsupported encoding %q", enc))
}

func decodeLatin1(data []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", &core.EncodingError{Encoding: string(EncodingLatin1), Offset: 0, Snippet: core.Snippet(err.Error(), 32)}
	}
	return string(out), nil
}

// invalidUTF8Offset returns the byte offset of the first invalid sequence, or -1.
func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
