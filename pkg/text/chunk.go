package text

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunk splits text into sentence-respecting segments of at most maxChars
// characters. Sentences are accumulated into a buffer; when appending the
// next sentence would exceed the limit and the buffer is non-empty, the
// buffer is flushed and the sentence starts a new one. A single sentence
// longer than maxChars still becomes its own oversized chunk, and input
// without any detected sentence boundary comes back as one chunk, so
// non-empty input never yields zero chunks.
func Chunk(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return []string{text}
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, buf.String())
		buf.Reset()
	}

	for _, sentence := range sentences {
		add := len(sentence)
		if buf.Len() > 0 {
			add += 1
		}
		if buf.Len() > 0 && buf.Len()+add > maxChars {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sentence)
	}
	flush()

	return chunks
}

// ChunkTokens is the token-bounded variant of Chunk for ingestion configs
// sized in model tokens rather than characters. The encoder name is a
// tiktoken encoding such as "cl100k_base".
func ChunkTokens(text string, encoder string, maxTokens int) ([]string, error) {
	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return []string{text}, nil
	}

	var chunks []string
	var buf strings.Builder
	bufTokens := 0

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, buf.String())
		buf.Reset()
		bufTokens = 0
	}

	for _, sentence := range sentences {
		n := len(enc.Encode(sentence, nil, nil))
		if buf.Len() > 0 && bufTokens+n > maxTokens {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sentence)
		bufTokens += n
	}
	flush()

	return chunks, nil
}
