package models

import (
	"strconv"
)

// Metadata is stored next to every chunk and returned with every query result.
type Metadata struct {
	Source      string `json:"source"`
	Path        string `json:"path,omitempty"`
	Category    string `json:"category"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Chunk is one normalized, embedded text window of a source document.
type Chunk struct {
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// SourceDocument is what the document source collaborator hands to the
// ingestion pipeline: extracted text plus naming hints.
type SourceDocument struct {
	Text     string
	Source   string
	Path     string
	Category string
	Folder   string
}

// QueryRequest is a nearest-neighbour lookup. An empty Category searches the
// whole corpus.
type QueryRequest struct {
	Embedding      []float32
	MatchCount     int
	MatchThreshold float64
	Category       string
}

type QueryResult struct {
	Content    string   `json:"content"`
	Similarity float64  `json:"similarity"`
	Metadata   Metadata `json:"metadata"`
}

// ToMap flattens metadata for stores that only keep string attributes.
func (m Metadata) ToMap() map[string]string {
	out := map[string]string{
		MetaSource:      m.Source,
		MetaCategory:    m.Category,
		MetaChunkIndex:  strconv.Itoa(m.ChunkIndex),
		MetaTotalChunks: strconv.Itoa(m.TotalChunks),
	}
	if m.Path != "" {
		out[MetaPath] = m.Path
	}
	return out
}

// MetadataFromMap is the inverse of ToMap. Unparseable counters are left at zero.
func MetadataFromMap(in map[string]string) Metadata {
	m := Metadata{
		Source:   in[MetaSource],
		Path:     in[MetaPath],
		Category: in[MetaCategory],
	}
	m.ChunkIndex, _ = strconv.Atoi(in[MetaChunkIndex])
	m.TotalChunks, _ = strconv.Atoi(in[MetaTotalChunks])
	return m
}
