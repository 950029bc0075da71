package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"graphkb/pkg/leaselock"
	"graphkb/pkg/logger"
	"graphkb/pkg/store"
)

// ProcessDeleteMessage handles one message from the delete queue.
func ProcessDeleteMessage(
	ctx context.Context,
	storage store.GraphStorage,
	locks *leaselock.Client,
	body string,
) error {
	var msg DeleteDocumentMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("failed to parse delete message:\n%w", err)
	}
	if msg.DocumentID == "" {
		return fmt.Errorf("delete message without document id")
	}

	logger.Info("[Queue] Deleting document",
		"document_id", msg.DocumentID,
		"correlation_id", msg.CorrelationID,
	)

	err := withDocumentLease(ctx, locks, msg.DocumentID, func(ctx context.Context) error {
		return storage.DeleteDocument(ctx, msg.DocumentID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete document %s:\n%w", msg.DocumentID, err)
	}

	logger.Info("[Queue] Document deleted", "document_id", msg.DocumentID)
	return nil
}
