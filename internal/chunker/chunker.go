package chunker

import (
	"strings"
)

const (
	// DefaultChunkSize is the default maximum number of words per chunk.
	DefaultChunkSize = 500
	// DefaultOverlap is the default number of words carried between adjacent chunks.
	DefaultOverlap = 50
	// Version identifies the chunking algorithm. Bump it when Split changes output.
	Version = "words-v1"
)

// SplitDefault splits text using DefaultChunkSize and DefaultOverlap.
func SplitDefault(text string) []Chunk {
	return Split(text, DefaultChunkSize, DefaultOverlap)
}

// Split segments text into overlapping word windows that respect paragraph
// boundaries where possible.
//
// chunkSize and overlap are word counts. Whole paragraphs are packed greedily
// while the buffer stays within chunkSize; when the next paragraph would
// overflow, the buffer is emitted and the next one is seeded with the last
// overlap words of the emitted chunk. A paragraph longer than chunkSize is
// windowed on its own with stride chunkSize-overlap.
//
// Empty or whitespace-only text yields an empty slice. Split never fails.
func Split(text string, chunkSize, overlap int) []Chunk {
	chunkSize, overlap = normalizeParams(chunkSize, overlap)

	paragraphs := splitParagraphs(text)
	s := &splitter{chunks: []Chunk{}}
	if len(paragraphs) == 0 {
		return s.chunks
	}

	var buffer []string // Pending paragraphs, each already whitespace-collapsed
	bufferWords := 0

	for _, para := range paragraphs {
		words := strings.Fields(para)
		wordCount := len(words)

		// Oversized paragraph: flush pending buffer without overlap and window it alone
		if wordCount > chunkSize {
			if len(buffer) > 0 {
				s.emit(strings.Join(buffer, "\n\n"))
				buffer = nil
				bufferWords = 0
			}
			s.window(words, chunkSize, overlap)
			continue
		}

		if bufferWords+wordCount > chunkSize && len(buffer) > 0 {
			emitted := strings.Join(buffer, "\n\n")
			s.emit(emitted)

			tail := lastWords(strings.Fields(emitted), overlap)
			buffer = buffer[:0]
			bufferWords = 0
			if len(tail) > 0 {
				buffer = append(buffer, strings.Join(tail, " "))
				bufferWords = len(tail)
			}
			buffer = append(buffer, para)
			bufferWords += wordCount
			continue
		}

		buffer = append(buffer, para)
		bufferWords += wordCount
	}

	if len(buffer) > 0 {
		s.emit(strings.Join(buffer, "\n\n"))
	}

	return s.chunks
}

// splitter accumulates chunks and assigns indexes at emission time.
type splitter struct {
	chunks []Chunk
}

// emit appends content as the next chunk unless it is blank.
func (s *splitter) emit(content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	s.chunks = append(s.chunks, Chunk{
		Content:    content,
		ChunkIndex: len(s.chunks),
		PageNumber: 0,
	})
}

// window emits fixed windows of chunkSize words with stride chunkSize-overlap.
// The last window may be shorter than chunkSize; it is not re-anchored to the end.
func (s *splitter) window(words []string, chunkSize, overlap int) {
	stride := chunkSize - overlap
	for start := 0; start < len(words); start += stride {
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		s.emit(strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}
	}
}

// normalizeParams guards against parameters that would stall the window loop.
func normalizeParams(chunkSize, overlap int) (int, int) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return chunkSize, overlap
}

// splitParagraphs normalizes line endings and returns the paragraphs of text
// with internal whitespace collapsed to single spaces. A paragraph is a run of
// non-blank lines; one or more blank lines separate paragraphs.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		para := strings.Join(strings.Fields(strings.Join(current, " ")), " ")
		if para != "" {
			paragraphs = append(paragraphs, para)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return paragraphs
}

// lastWords returns the trailing min(n, len(words)) words.
func lastWords(words []string, n int) []string {
	if n <= 0 || len(words) == 0 {
		return nil
	}
	if n > len(words) {
		n = len(words)
	}
	return words[len(words)-n:]
}
