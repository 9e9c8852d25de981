package models

const (
	DefaultCategory = "default"
	DocumentsTable  = "documents"

	MetaSource      = "source"
	MetaPath        = "path"
	MetaCategory    = "category"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"

	MatchDocumentsFunc           = "match_documents"
	MatchDocumentsByCategoryFunc = "match_documents_by_category"
)

const (
	ResultsHeader              = "Information found in the documents:"
	ResultTemplate             = "Result %d (similarity: %.2f): %s\nSource: %s"
	NoResultsMessage           = "I could not find specific information about '%s' for the product '%s'. Please try rephrasing your question or ask about another product."
	NoResultsAnyProductMessage = "I could not find specific information about '%s'. Please try rephrasing your question or mention the product it is about."
	FailureMessage             = "Sorry, I had a problem searching for relevant information. Please try again with another query."
)
