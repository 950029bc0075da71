package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"graphkb/internal/queue"
	"graphkb/internal/server/middleware"
	"graphkb/pkg/common"
	"graphkb/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreateDocumentHandler registers a document and queues it for ingestion.
// The document starts in processing state; the worker flips it to ready
// (or error) once extraction finishes.
func CreateDocumentHandler(c echo.Context) error {
	type createDocumentBody struct {
		Name string `json:"name" validate:"required"`
		Text string `json:"text" validate:"required"`
	}

	type createDocumentResponse struct {
		Message  string           `json:"message"`
		Document *common.Document `json:"document,omitempty"`
	}

	data := new(createDocumentBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createDocumentResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createDocumentResponse{
			Message: "Invalid request body",
		})
	}
	if strings.TrimSpace(data.Text) == "" {
		return c.JSON(http.StatusBadRequest, createDocumentResponse{
			Message: "Document text is empty",
		})
	}

	docID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createDocumentResponse{
			Message: "Internal server error",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	doc := common.Document{
		ID:     docID,
		Name:   data.Name,
		Status: common.DocumentProcessing,
	}
	if err := app.Storage.CreateDocument(ctx, doc); err != nil {
		logger.Error("Failed to create document", "err", err)
		return c.JSON(http.StatusInternalServerError, createDocumentResponse{
			Message: "Internal server error",
		})
	}

	msg := queue.IngestDocumentMsg{
		DocumentID:    docID,
		Name:          data.Name,
		Text:          data.Text,
		CorrelationID: uuid.NewString(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createDocumentResponse{
			Message: "Internal server error",
		})
	}
	if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, body); err != nil {
		logger.Error("Failed to publish to ingest_queue", "err", err)
		if err := app.Storage.SetDocumentStatus(ctx, docID, common.DocumentError); err != nil {
			logger.Error("Failed to mark document as failed", "err", err)
		}
		return c.JSON(http.StatusInternalServerError, createDocumentResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, createDocumentResponse{
		Message:  "Document queued for ingestion",
		Document: &doc,
	})
}
