package ingest

import (
	"github.com/rs/zerolog/log"
)

type Stage string

const (
	StageEmbed  Stage = "embed"
	StageInsert Stage = "insert"
)

type ChunkFailure struct {
	ChunkIndex int
	Stage      Stage
	Err        error
}

// DocumentReport is the outcome of one document. Err is set when the
// document was skipped as a whole or none of its chunks was stored.
type DocumentReport struct {
	Source      string
	Category    string
	TotalChunks int
	Stored      int
	Failures    []ChunkFailure
	Err         error
}

// Skipped reports whether nothing of the document reached the store.
func (r DocumentReport) Skipped() bool { return r.Stored == 0 }

type BatchReport struct {
	Documents []DocumentReport
}

func (b BatchReport) Ingested() int {
	n := 0
	for _, d := range b.Documents {
		if !d.Skipped() {
			n++
		}
	}
	return n
}

func (b BatchReport) Skipped() int {
	return len(b.Documents) - b.Ingested()
}

func (b BatchReport) ChunksStored() int {
	n := 0
	for _, d := range b.Documents {
		n += d.Stored
	}
	return n
}

func (b BatchReport) ChunksFailed() int {
	n := 0
	for _, d := range b.Documents {
		n += len(d.Failures)
	}
	return n
}

// Log writes the batch summary line.
func (b BatchReport) Log() {
	log.Info().
		Int("documents", len(b.Documents)).
		Int("ingested", b.Ingested()).
		Int("skipped", b.Skipped()).
		Int("chunks_stored", b.ChunksStored()).
		Int("chunks_failed", b.ChunksFailed()).
		Msg("Ingestion finished")
}
