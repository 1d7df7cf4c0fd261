// Package encoding resolves raw file bytes into text.
//
// Resolution follows a fixed chain: a byte-order mark, an encoding declared
// in a magic coding comment or an XML prolog, a UTF-8 probe, and finally a
// Windows-1252 fallback that renders any byte sequence.
package encoding

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Encoding names reported in Result.Encoding.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8Sig     = "utf-8-sig"
	EncodingUTF16BE     = "utf-16-be"
	EncodingUTF16LE     = "utf-16-le"
	EncodingUTF32BE     = "utf-32-be"
	EncodingUTF32LE     = "utf-32-le"
	EncodingWindows1252 = "windows-1252"
)

// declarationSampleLength limits how many bytes are inspected for encoding declarations.
const declarationSampleLength = 128

// bomEntry associates a byte-order mark with the encoding it announces.
type bomEntry struct {
	mark []byte
	name string
}

// bomEntries are checked in order; utf-32-le must precede utf-16-le because
// their marks overlap.
var bomEntries = []bomEntry{
	{mark: []byte{0xEF, 0xBB, 0xBF}, name: EncodingUTF8Sig},
	{mark: []byte{0xFF, 0xFE, 0x00, 0x00}, name: EncodingUTF32LE},
	{mark: []byte{0xFE, 0xFF}, name: EncodingUTF16BE},
	{mark: []byte{0xFF, 0xFE}, name: EncodingUTF16LE},
	{mark: []byte{0x00, 0x00, 0xFE, 0xFF}, name: EncodingUTF32BE},
}

var (
	codingMagicRegex = regexp.MustCompile(`coding[:=][ \t]*([-_.a-zA-Z0-9]+)`)
	xmlPrologRegex   = regexp.MustCompile(`<\?xml\s+.*encoding="([-_.a-zA-Z0-9]+)".*\?>`)
)

// declaredNameAliases maps encoding names common in coding comments to IANA names.
var declaredNameAliases = map[string]string{
	"cp1252":  "windows-1252",
	"latin-1": "iso-8859-1",
	"latin1":  "iso-8859-1",
	"utf8":    "utf-8",
}

// Result is the outcome of a successful decode.
type Result struct {
	Text     string
	Encoding string
}

// DetectBOM reports the encoding announced by a leading byte-order mark.
func DetectBOM(raw []byte) (string, bool) {
	for _, entry := range bomEntries {
		if bytes.HasPrefix(raw, entry.mark) {
			return entry.name, true
		}
	}
	return "", false
}

// DeclaredEncoding extracts an encoding name declared in the first two lines
// of content, either as a magic coding comment or an XML prolog attribute.
func DeclaredEncoding(raw []byte) (string, bool) {
	sample := raw
	if len(sample) > declarationSampleLength {
		sample = sample[:declarationSampleLength]
	}
	heading := strings.ReplaceAll(string(sample), "\r\n", "\n")
	heading = strings.ReplaceAll(heading, "\r", "\n")
	headingLines := strings.SplitN(heading, "\n", 3)
	if len(headingLines) > 2 {
		headingLines = headingLines[:2]
	}
	heading = strings.Join(headingLines, "\n")

	if match := codingMagicRegex.FindStringSubmatch(heading); match != nil {
		return match[1], true
	}
	if match := xmlPrologRegex.FindStringSubmatch(headingLines[0]); match != nil {
		return match[1], true
	}
	return "", false
}

// Decode converts raw file bytes into text following the resolution chain.
// It fails only when a declared encoding exists but cannot render the content;
// undeclared content always decodes because of the Windows-1252 fallback.
func Decode(raw []byte, path string) (Result, error) {
	if len(raw) == 0 {
		return Result{Text: "", Encoding: EncodingUTF8}, nil
	}

	if bomName, hasBOM := DetectBOM(raw); hasBOM {
		text, decodeErr := decodeWithBOM(raw, bomName)
		if decodeErr != nil {
			return Result{}, fmt.Errorf("decode %s as %s: %w", path, bomName, decodeErr)
		}
		return Result{Text: text, Encoding: bomName}, nil
	}

	if declaredName, hasDeclaration := DeclaredEncoding(raw); hasDeclaration {
		if resolved, ok := resolveDeclaredEncoding(declaredName); ok {
			decoded, decodeErr := resolved.NewDecoder().Bytes(raw)
			if decodeErr != nil {
				return Result{}, fmt.Errorf("decode %s as declared encoding %s: %w", path, declaredName, decodeErr)
			}
			return Result{Text: string(decoded), Encoding: strings.ToLower(declaredName)}, nil
		}
		// An unknown declared name falls through to the probe chain.
	}

	if utf8.Valid(raw) {
		return Result{Text: string(raw), Encoding: EncodingUTF8}, nil
	}

	decoded, decodeErr := charmap.Windows1252.NewDecoder().Bytes(raw)
	if decodeErr != nil {
		return Result{}, fmt.Errorf("decode %s with fallback encoding: %w", path, decodeErr)
	}
	return Result{Text: string(decoded), Encoding: EncodingWindows1252}, nil
}

// decodeWithBOM decodes content that starts with a known byte-order mark.
func decodeWithBOM(raw []byte, bomName string) (string, error) {
	switch bomName {
	case EncodingUTF8Sig:
		return string(raw[len(bomEntries[0].mark):]), nil
	case EncodingUTF16BE:
		return decodeBytes(unicode.UTF16(unicode.BigEndian, unicode.UseBOM), raw)
	case EncodingUTF16LE:
		return decodeBytes(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), raw)
	case EncodingUTF32BE:
		return decodeBytes(utf32.UTF32(utf32.BigEndian, utf32.UseBOM), raw)
	case EncodingUTF32LE:
		return decodeBytes(utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), raw)
	default:
		return "", fmt.Errorf("unsupported byte-order mark encoding %s", bomName)
	}
}

func decodeBytes(enc encoding.Encoding, raw []byte) (string, error) {
	decoded, decodeErr := enc.NewDecoder().Bytes(raw)
	if decodeErr != nil {
		return "", decodeErr
	}
	return string(decoded), nil
}

// resolveDeclaredEncoding maps a declared encoding name to a decoder.
func resolveDeclaredEncoding(name string) (encoding.Encoding, bool) {
	normalized := strings.ToLower(name)
	if alias, hasAlias := declaredNameAliases[normalized]; hasAlias {
		normalized = alias
	}
	resolved, resolveErr := ianaindex.IANA.Encoding(normalized)
	if resolveErr != nil || resolved == nil {
		return nil, false
	}
	return resolved, true
}
