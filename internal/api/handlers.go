package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docubot/rag-assistant/internal/core"
	"github.com/docubot/rag-assistant/internal/extract"
	"github.com/docubot/rag-assistant/internal/store"
)

const maxUploadBytes = 32 << 20

type APIHandler struct {
	ingestService *core.IngestService
	ragService    *core.RAGService
	sessions      *core.SessionManager
	index         store.Index
}

func NewAPIHandler(ingest *core.IngestService, rag *core.RAGService, sessions *core.SessionManager, index store.Index) *APIHandler {
	return &APIHandler{
		ingestService: ingest,
		ragService:    rag,
		sessions:      sessions,
		index:         index,
	}
}

// UploadResult reports the outcome of one file in an upload batch.
type UploadResult struct {
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Error    string `json:"error,omitempty"`
}

// UploadDocumentsHandler ingests every file of a multipart upload. One bad
// file does not abort the batch; its result carries the error instead.
func (h *APIHandler) UploadDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files provided under field 'files'", http.StatusBadRequest)
		return
	}

	results := make([]UploadResult, 0, len(files))
	for _, header := range files {
		result := UploadResult{Filename: header.Filename}

		if !extract.Supported(header.Filename) {
			result.Error = "unsupported file type"
			results = append(results, result)
			continue
		}

		file, err := header.Open()
		if err != nil {
			result.Error = "failed to open upload: " + err.Error()
			results = append(results, result)
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			result.Error = "failed to read upload: " + err.Error()
			results = append(results, result)
			continue
		}

		chunks, err := h.ingestService.IngestFile(r.Context(), header.Filename, data, nil)
		if err != nil {
			log.Printf("Failed to ingest %s: %v", header.Filename, err)
			result.Error = err.Error()
		} else {
			result.Chunks = chunks
		}
		results = append(results, result)
	}

	json.NewEncoder(w).Encode(results)
}

type AddTextRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type AddTextResponse struct {
	Chunks int `json:"chunks"`
}

// AddTextHandler ingests a directly entered block of text.
func (h *APIHandler) AddTextHandler(w http.ResponseWriter, r *http.Request) {
	var req AddTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "Text cannot be empty", http.StatusBadRequest)
		return
	}

	metadata := map[string]any{"source": "direct_input"}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	chunks, err := h.ingestService.IngestText(r.Context(), req.Text, metadata, "")
	if err != nil {
		log.Printf("Failed to ingest direct text: %v", err)
		http.Error(w, "Failed to ingest text: "+err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(AddTextResponse{Chunks: chunks})
}

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.index.Stats(r.Context())
	if err != nil {
		log.Printf("Failed to read index stats: %v", err)
		http.Error(w, "Failed to read index stats", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

// DeleteAllDocumentsHandler wipes the index. Deletion is irreversible, so it
// demands an explicit confirm=true query parameter as the second
// confirmation step.
func (h *APIHandler) DeleteAllDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		http.Error(w, "Deleting all documents is irreversible; repeat the request with ?confirm=true", http.StatusBadRequest)
		return
	}

	if err := h.index.DeleteAll(r.Context()); err != nil {
		log.Printf("Failed to delete all documents: %v", err)
		http.Error(w, "Failed to delete documents", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]bool{"deleted": true})
}

type SessionResponse struct {
	ID       string         `json:"id"`
	Messages []core.Message `json:"messages"`
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Create()
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SessionResponse{ID: session.ID, Messages: session.Messages()})
}

func (h *APIHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(SessionResponse{ID: session.ID, Messages: session.Messages()})
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Message content cannot be empty", http.StatusBadRequest)
		return
	}

	answer, err := h.ragService.Ask(r.Context(), session, req.Content)
	if err != nil {
		log.Printf("Failed to answer in session %s: %v", session.ID, err)
		http.Error(w, "Failed to answer", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(answer)
}

func (h *APIHandler) ClearSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	session.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}
