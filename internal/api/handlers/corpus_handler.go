package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/config"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/ingestion_engine"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/models"
)

// CorpusHandler manages the shared knowledge corpus: upload a source file
// to object storage, record it, and hand it to the background ingestor.
type CorpusHandler struct {
	db       core.DbClient
	obj      core.ObjectClient
	ingestor ingestion_engine.Ingestor
	cfg      *config.Config
}

func NewCorpusHandler(db core.DbClient, obj core.ObjectClient, ing ingestion_engine.Ingestor, cfg *config.Config) *CorpusHandler {
	return &CorpusHandler{db: db, obj: obj, ingestor: ing, cfg: cfg}
}

// UploadDocument handles file upload, DB insert, and background processing.
func (h *CorpusHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid file")
		return
	}
	defer file.Close()

	// Strip any path components before the name goes into the object key.
	cleanFilename := filepath.Base(header.Filename)
	docID := uuid.NewString()
	key := fmt.Sprintf("corpus/%s/%s", docID, cleanFilename)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadCtx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	url, err := h.obj.UploadFile(uploadCtx, h.cfg.BucketName, key, file, contentType)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	doc := &models.KnowledgeDocument{
		ID:          docID,
		FileName:    cleanFilename,
		StorageURL:  url,
		ContentType: contentType,
		Status:      "uploaded",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := h.db.CreateKnowledgeDocument(uploadCtx, doc); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store document metadata")
		return
	}

	h.ingestor.Enqueue(doc.ID)

	respondJSON(w, http.StatusAccepted, doc)
}

func (h *CorpusHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := h.db.ListKnowledgeDocuments(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "listing documents failed")
		return
	}
	if documents == nil {
		documents = []models.KnowledgeDocument{}
	}
	respondJSON(w, http.StatusOK, documents)
}
