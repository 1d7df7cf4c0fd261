package encoding_test

import (
	"testing"

	"github.com/linetally/linetally/internal/encoding"
)

// TestDetectBOM verifies the byte-order mark table, including the utf-32-le
// and utf-16-le overlap.
func TestDetectBOM(testingHandle *testing.T) {
	testCases := []struct {
		name         string
		raw          []byte
		expectedName string
		expectFound  bool
	}{
		{
			name:         "utf8_signature",
			raw:          []byte{0xEF, 0xBB, 0xBF, 'h', 'i'},
			expectedName: encoding.EncodingUTF8Sig,
			expectFound:  true,
		},
		{
			name:         "utf16_big_endian",
			raw:          []byte{0xFE, 0xFF, 0x00, 'h'},
			expectedName: encoding.EncodingUTF16BE,
			expectFound:  true,
		},
		{
			name:         "utf16_little_endian",
			raw:          []byte{0xFF, 0xFE, 'h', 0x00},
			expectedName: encoding.EncodingUTF16LE,
			expectFound:  true,
		},
		{
			name:         "utf32_little_endian_wins_over_utf16",
			raw:          []byte{0xFF, 0xFE, 0x00, 0x00, 'h', 0x00, 0x00, 0x00},
			expectedName: encoding.EncodingUTF32LE,
			expectFound:  true,
		},
		{
			name:         "utf32_big_endian",
			raw:          []byte{0x00, 0x00, 0xFE, 0xFF, 0x00, 0x00, 0x00, 'h'},
			expectedName: encoding.EncodingUTF32BE,
			expectFound:  true,
		},
		{
			name:        "no_mark",
			raw:         []byte("plain"),
			expectFound: false,
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			name, found := encoding.DetectBOM(testCase.raw)
			if found != testCase.expectFound {
				t.Fatalf("expected found=%v, got %v", testCase.expectFound, found)
			}
			if name != testCase.expectedName {
				t.Fatalf("expected %q, got %q", testCase.expectedName, name)
			}
		})
	}
}

// TestDeclaredEncoding verifies coding comments and XML prologs, and that
// declarations past the second line are ignored.
func TestDeclaredEncoding(testingHandle *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		expectedName string
		expectFound  bool
	}{
		{
			name:         "magic_comment_first_line",
			raw:          "# -*- coding: cp1252 -*-\nprint('x')\n",
			expectedName: "cp1252",
			expectFound:  true,
		},
		{
			name:         "magic_comment_second_line",
			raw:          "#!/usr/bin/env python\n# coding=utf-8\n",
			expectedName: "utf-8",
			expectFound:  true,
		},
		{
			name:         "xml_prolog",
			raw:          "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<root/>\n",
			expectedName: "ISO-8859-1",
			expectFound:  true,
		},
		{
			name:        "declaration_on_third_line_is_ignored",
			raw:         "line one\nline two\n# coding: cp1252\n",
			expectFound: false,
		},
		{
			name:        "no_declaration",
			raw:         "print('x')\n",
			expectFound: false,
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			name, found := encoding.DeclaredEncoding([]byte(testCase.raw))
			if found != testCase.expectFound {
				t.Fatalf("expected found=%v, got %v (name %q)", testCase.expectFound, found, name)
			}
			if found && name != testCase.expectedName {
				t.Fatalf("expected %q, got %q", testCase.expectedName, name)
			}
		})
	}
}

// TestDecode verifies the resolution chain end to end.
func TestDecode(testingHandle *testing.T) {
	testCases := []struct {
		name             string
		raw              []byte
		expectedText     string
		expectedEncoding string
	}{
		{
			name:             "empty_content",
			raw:              nil,
			expectedText:     "",
			expectedEncoding: encoding.EncodingUTF8,
		},
		{
			name:             "plain_utf8",
			raw:              []byte("héllo\n"),
			expectedText:     "héllo\n",
			expectedEncoding: encoding.EncodingUTF8,
		},
		{
			name:             "utf8_signature_is_stripped",
			raw:              []byte{0xEF, 0xBB, 0xBF, 'h', 'i', '\n'},
			expectedText:     "hi\n",
			expectedEncoding: encoding.EncodingUTF8Sig,
		},
		{
			name:             "utf16_little_endian",
			raw:              []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00, '\n', 0x00},
			expectedText:     "hi\n",
			expectedEncoding: encoding.EncodingUTF16LE,
		},
		{
			name:             "declared_cp1252",
			raw:              append([]byte("# -*- coding: cp1252 -*-\n"), 0xE9, '\n'),
			expectedText:     "# -*- coding: cp1252 -*-\né\n",
			expectedEncoding: "cp1252",
		},
		{
			name:             "invalid_utf8_falls_back_to_windows1252",
			raw:              []byte{'h', 0xE9, '\n'},
			expectedText:     "hé\n",
			expectedEncoding: encoding.EncodingWindows1252,
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(t *testing.T) {
			result, decodeErr := encoding.Decode(testCase.raw, "sample")
			if decodeErr != nil {
				t.Fatalf("Decode error: %v", decodeErr)
			}
			if result.Text != testCase.expectedText {
				t.Fatalf("expected text %q, got %q", testCase.expectedText, result.Text)
			}
			if result.Encoding != testCase.expectedEncoding {
				t.Fatalf("expected encoding %q, got %q", testCase.expectedEncoding, result.Encoding)
			}
		})
	}
}

// TestDecodeUnknownDeclaredNameFallsThrough verifies that an unresolvable
// declared name does not fail the decode.
func TestDecodeUnknownDeclaredNameFallsThrough(testingHandle *testing.T) {
	raw := []byte("# coding: made-up-name\nprint('x')\n")
	result, decodeErr := encoding.Decode(raw, "sample.py")
	if decodeErr != nil {
		testingHandle.Fatalf("Decode error: %v", decodeErr)
	}
	if result.Encoding != encoding.EncodingUTF8 {
		testingHandle.Fatalf("expected utf-8 probe result, got %s", result.Encoding)
	}
}
