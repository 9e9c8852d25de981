package chunker

import (
	"fmt"
)

// Chunker splits normalized text into overlapping windows of Size runes.
type Chunker struct {
	Size    int
	Overlap int
	// KeepShortDocuments keeps the only window of a document whose text is
	// too short to pass the minimum length filter.
	KeepShortDocuments bool
}

func NewChunker(size, overlap int, keepShort bool) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("invalid chunking parameters: size=%d overlap=%d", size, overlap)
	}
	return &Chunker{Size: size, Overlap: overlap, KeepShortDocuments: keepShort}, nil
}

// Split returns the windows in document order; the position of a window in
// the slice is its chunk index. Windows of Size/2 runes or less are dropped.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.Size - c.Overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+c.Size, len(runes))
		window := runes[start:end]
		// integer form of len > Size/2
		if 2*len(window) > c.Size {
			chunks = append(chunks, string(window))
		}
	}

	if len(chunks) == 0 && c.KeepShortDocuments {
		return []string{text}
	}
	return chunks
}
