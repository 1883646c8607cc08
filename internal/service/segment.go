package service

import "unicode/utf8"

// SplitText partitions text into ordered chunks of at most maxLen bytes,
// backing each boundary off to a rune start so multi-byte characters are
// never split. A maxLen narrower than a single rune yields one-rune chunks
// instead of splitting it. No overlap, no word-boundary awareness: a chunk
// may split mid-token. The concatenation of all chunks reconstructs the
// input exactly. Empty input yields zero chunks.
//
// maxLen controls scout parallelism and per-call token cost; it is a
// tunable, not a protocol requirement.
func SplitText(text string, maxLen int) []string {
	if text == "" || maxLen <= 0 {
		return nil
	}

	chunks := make([]string, 0, (len(text)+maxLen-1)/maxLen)
	for start := 0; start < len(text); {
		end := start + maxLen
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == start {
			// maxLen is narrower than the rune at start; take it whole
			_, width := utf8.DecodeRuneInString(text[start:])
			end = start + width
		}
		chunks = append(chunks, text[start:end])
		start = end
	}
	return chunks
}
