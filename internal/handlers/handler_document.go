package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/SscSPs/furniture_erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type postDocumentFunc func(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error)

// documentKinds maps the URL segment of each ERP document to its source type.
var documentKinds = map[string]domain.SourceDocumentType{
	"invoices":            domain.SourceInvoice,
	"payments":            domain.SourcePayment,
	"purchase-orders":     domain.SourcePurchaseOrder,
	"supplier-payments":   domain.SourceSupplierPayment,
	"expenses":            domain.SourceExpense,
	"partner-investments": domain.SourcePartnerInvestment,
}

// documentHandler posts ERP business documents to the ledger.
type documentHandler struct {
	documentService portssvc.DocumentSvc
}

func newDocumentHandler(ds portssvc.DocumentSvc) *documentHandler {
	return &documentHandler{documentService: ds}
}

// registerDocumentRoutes registers the posting endpoints of the ERP modules.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvc) {
	h := newDocumentHandler(documentService)

	docs := rg.Group("/documents")
	{
		docs.POST("/invoices", h.postDocument(documentService.PostInvoice))
		docs.POST("/payments", h.postDocument(documentService.PostPayment))
		docs.POST("/purchase-orders", h.postDocument(documentService.PostPurchaseOrder))
		docs.POST("/supplier-payments", h.postDocument(documentService.PostSupplierPayment))
		docs.POST("/expenses", h.postDocument(documentService.PostExpense))
		docs.POST("/partner-investments", h.postDocument(documentService.PostPartnerInvestment))
		docs.PUT("/:kind", h.amendDocument)
		docs.DELETE("/:kind/:documentID", h.deleteDocument)
	}
}

func bindDocument(c *gin.Context, logger *slog.Logger) (domain.BusinessDocument, bool) {
	var req dto.DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for document", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return domain.BusinessDocument{}, false
	}
	doc, err := req.ToDomain()
	if err != nil {
		respondWithError(c, logger, err, "Failed to read document")
		return domain.BusinessDocument{}, false
	}
	return doc, true
}

func documentKind(c *gin.Context) (domain.SourceDocumentType, error) {
	kind, ok := documentKinds[c.Param("kind")]
	if !ok {
		return "", fmt.Errorf("%w: unknown document kind '%s'", apperrors.ErrValidation, c.Param("kind"))
	}
	return kind, nil
}

// postDocument godoc
// @Summary Post an ERP document
// @Description Derives the journal lines from the configured account roles and posts them.
// @Description Available kinds: invoices, payments, purchase-orders, supplier-payments, expenses, partner-investments.
// @Description A partner investment of zero is accepted and posts nothing.
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   document body dto.DocumentRequest true "Document"
// @Success 201 {object} dto.DocumentPostingResponse
// @Success 200 {object} dto.DocumentPostingResponse "Nothing posted"
// @Failure 400 {object} map[string]string "Invalid document"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Document already posted"
// @Failure 503 {object} map[string]string "Aborted, retry"
// @Failure 500 {object} map[string]string "Failed to post document"
// @Security BearerAuth
// @Router /documents/invoices [post]
func (h *documentHandler) postDocument(post postDocumentFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		doc, ok := bindDocument(c, logger)
		if !ok {
			return
		}
		userID, ok := requireUserID(c, logger)
		if !ok {
			return
		}

		logger = logger.With(slog.String("document_id", doc.ID))
		entry, err := post(c.Request.Context(), doc, userID)
		if err != nil {
			respondWithError(c, logger, err, "Failed to post document")
			return
		}
		if entry == nil {
			c.JSON(http.StatusOK, dto.ToDocumentPostingResponse(nil))
			return
		}
		c.JSON(http.StatusCreated, dto.ToDocumentPostingResponse(entry))
	}
}

// amendDocument godoc
// @Summary Amend a posted ERP document
// @Description Replaces the document's entry with lines derived from the new values in one transaction.
// @Description A partner investment amended to zero is reversed.
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   kind path string true "Document kind"
// @Param   document body dto.DocumentRequest true "Amended document"
// @Success 200 {object} dto.DocumentPostingResponse
// @Failure 400 {object} map[string]string "Invalid document"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document has no entry"
// @Failure 503 {object} map[string]string "Aborted, retry"
// @Failure 500 {object} map[string]string "Failed to amend document"
// @Security BearerAuth
// @Router /documents/{kind} [put]
func (h *documentHandler) amendDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kind, err := documentKind(c)
	if err != nil {
		respondWithError(c, logger, err, "Failed to amend document")
		return
	}
	doc, ok := bindDocument(c, logger)
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("source", domain.SourceDocument{Type: kind, ID: doc.ID}.String()))
	entry, err := h.documentService.AmendDocument(c.Request.Context(), kind, doc, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to amend document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentPostingResponse(entry))
}

// deleteDocument godoc
// @Summary Delete an ERP document from the ledger
// @Description Reverses the document's entry, restoring every affected balance
// @Tags documents
// @Produce  json
// @Param   kind path string true "Document kind"
// @Param   documentID path string true "Document ID"
// @Success 200 {object} dto.ReversalResponse
// @Failure 400 {object} map[string]string "Unknown document kind"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document has no entry"
// @Failure 503 {object} map[string]string "Aborted, retry"
// @Failure 500 {object} map[string]string "Failed to delete document"
// @Security BearerAuth
// @Router /documents/{kind}/{documentID} [delete]
func (h *documentHandler) deleteDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	kind, err := documentKind(c)
	if err != nil {
		respondWithError(c, logger, err, "Failed to delete document")
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	src := domain.SourceDocument{Type: kind, ID: c.Param("documentID")}
	logger = logger.With(slog.String("source", src.String()))
	result, err := h.documentService.DeleteDocument(c.Request.Context(), src, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to delete document")
		return
	}
	c.JSON(http.StatusOK, dto.ToReversalResponse(result))
}
