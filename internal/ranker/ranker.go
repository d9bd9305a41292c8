package ranker

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"docsift/internal/chunker"
)

const (
	// DefaultMaxChunks is the number of chunks returned when the caller does not choose.
	DefaultMaxChunks = 3
	// WholeWordWeight is added per whole-word occurrence of a query term.
	WholeWordWeight = 3.0
	// SubstringWeight is added per occurrence found only inside a longer word.
	SubstringWeight = 1.5
	// CoOccurrenceWeight multiplies matchedWords when more than one term matched.
	CoOccurrenceWeight = 2.0
	// PositionDecay is the largest penalty applied to the last chunk of a document.
	PositionDecay = 0.1
	// MinTokenLength is the shortest query token (in runes) that takes part in scoring.
	MinTokenLength = 3
)

var stopWords = map[string]struct{}{
	"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "an": {}, "in": {},
	"with": {}, "to": {}, "for": {}, "a": {}, "and": {}, "or": {}, "of": {},
	"as": {}, "by": {}, "but": {}, "this": {}, "that": {}, "it": {},
}

// ScoredChunk is a chunk annotated with its relevance to one query.
type ScoredChunk struct {
	chunker.Chunk
	Score        float64 `json:"score"`         // Normalized relevance, comparable only within one call
	RawScore     float64 `json:"raw_score"`     // Term-match score before length and position adjustment
	MatchedWords int     `json:"matched_words"` // Distinct query terms found in the chunk
}

// Rank scores chunks against query and returns at most maxChunks of them,
// best first. Chunks with a non-positive score are dropped.
//
// If the query has no usable terms after stop-word and length filtering, the
// first maxChunks chunks are returned in input order without scores.
func Rank(chunks []chunker.Chunk, query string, maxChunks int) []ScoredChunk {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if len(chunks) == 0 || strings.TrimSpace(query) == "" {
		return []ScoredChunk{}
	}

	terms := QueryTerms(query)
	if len(terms) == 0 {
		n := min(maxChunks, len(chunks))
		passthrough := make([]ScoredChunk, n)
		for i := 0; i < n; i++ {
			passthrough[i] = ScoredChunk{Chunk: chunks[i]}
		}
		return passthrough
	}

	total := float64(len(chunks))
	scored := make([]ScoredChunk, 0, len(chunks))
	for pos, c := range chunks {
		sc := scoreChunk(c, terms)
		if sc.Score <= 0 {
			continue
		}
		sc.Score *= 1 - (float64(pos)/total)*PositionDecay
		scored = append(scored, sc)
	}

	orderScored(scored)
	if len(scored) > maxChunks {
		scored = scored[:maxChunks]
	}
	return scored
}

// orderScored sorts by score, then matched term count, then ascending chunk index.
func orderScored(scored []ScoredChunk) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.MatchedWords != b.MatchedWords {
			return a.MatchedWords > b.MatchedWords
		}
		return a.ChunkIndex < b.ChunkIndex
	})
}

// QueryTerms lowercases query, splits it on whitespace and drops stop words
// and tokens shorter than MinTokenLength. Repeated terms are kept once.
func QueryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLength {
			continue
		}
		if _, isStop := stopWords[f]; isStop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// scoreChunk computes the length-normalized term score of c before the
// positional adjustment.
func scoreChunk(c chunker.Chunk, terms []string) ScoredChunk {
	sc := ScoredChunk{Chunk: c}

	wordCount := len(strings.Fields(c.Content))
	if wordCount == 0 {
		return sc
	}
	content := strings.ToLower(c.Content)

	var raw float64
	for _, term := range terms {
		substr := strings.Count(content, term)
		if substr == 0 {
			continue
		}
		whole := countWholeWord(content, term)
		raw += float64(whole)*WholeWordWeight + float64(max(0, substr-whole))*SubstringWeight
		sc.MatchedWords++
	}
	if sc.MatchedWords > 1 {
		raw += float64(sc.MatchedWords) * CoOccurrenceWeight
	}

	sc.RawScore = raw
	sc.Score = raw / math.Sqrt(float64(wordCount))
	return sc
}

// countWholeWord counts non-overlapping occurrences of term in s whose
// neighbouring runes are absent or not word characters. term is matched
// literally.
func countWholeWord(s, term string) int {
	count := 0
	for i := 0; i <= len(s)-len(term); {
		idx := strings.Index(s[i:], term)
		if idx < 0 {
			break
		}
		start := i + idx
		end := start + len(term)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			count++
			i = end
			continue
		}
		_, width := utf8.DecodeRuneInString(s[start:])
		i = start + width
	}
	return count
}

func boundaryBefore(s string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return !isWordRune(r)
}

func boundaryAfter(s string, pos int) bool {
	if pos >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
