package chunker

// Chunk represents a bounded window of document text.
type Chunk struct {
	Content    string `json:"content"`     // Trimmed chunk text, never blank
	ChunkIndex int    `json:"chunk_index"` // Emission order within one Split call (starts at 0)
	PageNumber int    `json:"page_number"` // Always 0 until page boundaries are tracked
}
