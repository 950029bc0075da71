package queue

// IngestDocumentMsg asks the worker to chunk, extract, and persist one
// document. Text is the raw document content; upload and parsing happen
// upstream.
type IngestDocumentMsg struct {
	DocumentID    string `json:"document_id"`
	Name          string `json:"name"`
	Text          string `json:"text"`
	CorrelationID string `json:"correlation_id"`
}

// DeleteDocumentMsg asks the worker to remove a document with its chunks,
// mention links, and any entities left without mentions.
type DeleteDocumentMsg struct {
	DocumentID    string `json:"document_id"`
	CorrelationID string `json:"correlation_id"`
}
