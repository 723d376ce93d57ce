package handlers

import (
	"net/http"

	"magizhquiz/internal/repository"
	"magizhquiz/internal/service"
)

// maxUploadBytes caps import uploads at 5 MB
const maxUploadBytes = 5 << 20

// TransferHandler handles import and export endpoints
type TransferHandler struct {
	transfer *service.TransferService
	userRepo *repository.UserRepository
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transfer *service.TransferService, userRepo *repository.UserRepository) *TransferHandler {
	return &TransferHandler{transfer: transfer, userRepo: userRepo}
}

// ImportCSV handles POST /api/import/csv: a multipart upload with a deck_id
// field and a CSV file of cards
func (h *TransferHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "deckId")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.transfer.ImportCardsCSV(UserIDFromContext(r.Context()), deckID, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExportDeck handles GET /api/export/deck/{id}
func (h *TransferHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	userID := UserIDFromContext(r.Context())
	exportedBy := ""
	if user, err := h.userRepo.GetUserByID(userID); err == nil && user != nil {
		exportedBy = user.Username
	}

	export, err := h.transfer.ExportDeck(deckID, userID, exportedBy)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="deck_export.json"`)
	writeJSON(w, http.StatusOK, export)
}

// ImportDeck handles POST /api/import/deck: a multipart upload with a JSON
// deck export file
func (h *TransferHandler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	deck, result, err := h.transfer.ImportDeck(UserIDFromContext(r.Context()), file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"deck":   deck,
		"result": result,
	})
}

// CSVTemplate handles GET /api/import/template/csv
func (h *TransferHandler) CSVTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="card_import_template.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.transfer.CSVTemplate()))
}
