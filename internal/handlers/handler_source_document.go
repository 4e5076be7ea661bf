package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/SscSPs/furniture_erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// sourceDocumentHandler reads, reverses and reposts the entry of a source document.
type sourceDocumentHandler struct {
	journalService  portssvc.JournalReaderSvc
	reversalService portssvc.ReversalSvc
}

func registerSourceDocumentRoutes(rg *gin.RouterGroup, journalService portssvc.JournalReaderSvc, reversalService portssvc.ReversalSvc) {
	h := &sourceDocumentHandler{
		journalService:  journalService,
		reversalService: reversalService,
	}

	journal := rg.Group("/source-documents/:sourceType/:sourceID/journal")
	{
		journal.GET("", h.getJournal)
		journal.DELETE("", h.reverseJournal)
		journal.PUT("", h.repostJournal)
	}
}

// sourceFromPath builds the source document reference from the path parameters.
func sourceFromPath(c *gin.Context) (domain.SourceDocument, error) {
	src := domain.SourceDocument{
		Type: domain.SourceDocumentType(c.Param("sourceType")),
		ID:   c.Param("sourceID"),
	}
	if err := src.Validate(); err != nil {
		return domain.SourceDocument{}, err
	}
	return src, nil
}

// getJournal godoc
// @Summary Get the journal entry of a source document
// @Tags source-documents
// @Produce  json
// @Param   sourceType path string true "Source document type"
// @Param   sourceID path string true "Source document ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid source document"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No entry for the source document"
// @Failure 500 {object} map[string]string "Failed to retrieve journal entry"
// @Security BearerAuth
// @Router /source-documents/{sourceType}/{sourceID}/journal [get]
func (h *sourceDocumentHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if _, ok := requireUserID(c, logger); !ok {
		return
	}

	src, err := sourceFromPath(c)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve journal entry")
		return
	}

	entry, err := h.journalService.GetEntryBySource(c.Request.Context(), src)
	if err != nil {
		respondWithError(c, logger.With(slog.String("source", src.String())), err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseJournal godoc
// @Summary Reverse the journal entry of a source document
// @Description Restores every affected account balance and removes the entry and its lines
// @Tags source-documents
// @Produce  json
// @Param   sourceType path string true "Source document type"
// @Param   sourceID path string true "Source document ID"
// @Success 200 {object} dto.ReversalResponse
// @Failure 400 {object} map[string]string "Invalid source document"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No entry for the source document"
// @Failure 503 {object} map[string]string "Aborted, retry"
// @Failure 500 {object} map[string]string "Failed to reverse journal entry"
// @Security BearerAuth
// @Router /source-documents/{sourceType}/{sourceID}/journal [delete]
func (h *sourceDocumentHandler) reverseJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	src, err := sourceFromPath(c)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reverse journal entry")
		return
	}

	logger = logger.With(slog.String("source", src.String()))
	result, err := h.reversalService.ReverseEntry(c.Request.Context(), src, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reverse journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToReversalResponse(result))
}

// repostJournal godoc
// @Summary Replace the journal entry of a source document
// @Description Reverses the existing entry and posts the new lines in a single transaction
// @Tags source-documents
// @Accept  json
// @Produce  json
// @Param   sourceType path string true "Source document type"
// @Param   sourceID path string true "Source document ID"
// @Param   entry body dto.RepostJournalEntryRequest true "Replacement lines"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid or unbalanced replacement"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No entry for the source document"
// @Failure 503 {object} map[string]string "Aborted, retry"
// @Failure 500 {object} map[string]string "Failed to repost journal entry"
// @Security BearerAuth
// @Router /source-documents/{sourceType}/{sourceID}/journal [put]
func (h *sourceDocumentHandler) repostJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RepostJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RepostEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	src, err := sourceFromPath(c)
	if err != nil {
		respondWithError(c, logger, err, "Failed to repost journal entry")
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		respondWithError(c, logger, err, "Failed to repost journal entry")
		return
	}

	logger = logger.With(slog.String("source", src.String()))
	entry, err := h.reversalService.RepostWithNewAmount(c.Request.Context(), src, cmd, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to repost journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}
