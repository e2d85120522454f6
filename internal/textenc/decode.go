// Package textenc decodes raw document bytes into valid UTF-8 strings.
package textenc

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// candidate pairs a name with a decoder, tried in priority order.
type candidate struct {
	name string
	enc  encoding.Encoding
}

var candidates = []candidate{
	{"gb18030", simplifiedchinese.GB18030},
	{"gbk", simplifiedchinese.GBK},
	{"big5", traditionalchinese.Big5},
}

// Decode converts content to a string, trying UTF-8 first, then common CJK
// encodings, finally falling back to Latin-1 which accepts any byte sequence.
// The returned string is always valid UTF-8.
func Decode(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	for _, c := range candidates {
		decoded, _, err := transform.Bytes(c.enc.NewDecoder(), content)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	// Latin-1 maps every byte to a code point, so this cannot fail.
	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), content)
	if err != nil {
		return Sanitize(string(content))
	}
	return string(decoded)
}

// Sanitize replaces invalid UTF-8 sequences so the string is safe to cross
// the service boundary.
func Sanitize(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}
