package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestSplitTextReconstruction verifies that concatenating all chunks
// reproduces the input exactly
func TestSplitTextReconstruction(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		maxLen int
	}{
		{name: "shorter than max", text: "short document", maxLen: 100},
		{name: "exact multiple", text: strings.Repeat("a", 300), maxLen: 100},
		{name: "uneven remainder", text: strings.Repeat("b", 250), maxLen: 100},
		{name: "single byte chunks", text: "abcdef", maxLen: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := SplitText(tc.text, tc.maxLen)

			if got := strings.Join(chunks, ""); got != tc.text {
				t.Errorf("Reconstruction mismatch: got %d bytes, want %d", len(got), len(tc.text))
			}
			for i, c := range chunks {
				if len(c) > tc.maxLen {
					t.Errorf("Chunk %d exceeds max length: got %d, want <=%d", i, len(c), tc.maxLen)
				}
			}

			wantCount := (len(tc.text) + tc.maxLen - 1) / tc.maxLen
			if len(chunks) != wantCount {
				t.Errorf("Chunk count mismatch: got %d, want %d", len(chunks), wantCount)
			}
		})
	}
}

// TestSplitTextRuneBoundaries verifies multi-byte characters are never
// split across chunks, so every chunk stays valid UTF-8
func TestSplitTextRuneBoundaries(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		maxLen int
	}{
		{name: "accented latin", text: strings.Repeat("héllo wörld ", 10), maxLen: 7},
		{name: "cjk", text: strings.Repeat("連邦法の改正", 8), maxLen: 10},
		{name: "max below rune width", text: "気候変動", maxLen: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := SplitText(tc.text, tc.maxLen)

			if got := strings.Join(chunks, ""); got != tc.text {
				t.Errorf("Reconstruction mismatch: got %d bytes, want %d", len(got), len(tc.text))
			}
			for i, c := range chunks {
				if !utf8.ValidString(c) {
					t.Errorf("Chunk %d is not valid UTF-8: %q", i, c)
				}
			}
		})
	}
}

// TestSplitTextEmpty verifies degenerate inputs yield zero chunks
func TestSplitTextEmpty(t *testing.T) {
	if chunks := SplitText("", 100); chunks != nil {
		t.Errorf("Empty input should yield nil, got %d chunks", len(chunks))
	}
	if chunks := SplitText("text", 0); chunks != nil {
		t.Errorf("Zero maxLen should yield nil, got %d chunks", len(chunks))
	}
	if chunks := SplitText("text", -5); chunks != nil {
		t.Errorf("Negative maxLen should yield nil, got %d chunks", len(chunks))
	}
}
