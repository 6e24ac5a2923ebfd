package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiranascan/backend/config"
	"github.com/kiranascan/backend/internal/domain"
	"github.com/kiranascan/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	receipts  *usecase.ReceiptService
	inventory *usecase.InventoryService
	ocrCfg    config.OCRConfig
}

// NewHandler creates a new HTTP handler
func NewHandler(receipts *usecase.ReceiptService, inventory *usecase.InventoryService, ocrCfg config.OCRConfig) *Handler {
	return &Handler{
		receipts:  receipts,
		inventory: inventory,
		ocrCfg:    ocrCfg,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "kiranascan-backend",
		"version": "1.0.0",
	})
}

// UploadReceipt accepts a receipt image and returns extracted, catalog-
// matched line items plus intermediate OCR data.
func (h *Handler) UploadReceipt(c *gin.Context) {
	image, ok := h.readImageUpload(c)
	if !ok {
		return
	}

	start := time.Now()
	extraction, err := h.receipts.ProcessReceipt(c.Request.Context(), image)

	matched, unmatched := 0, 0
	if extraction != nil {
		for _, item := range extraction.Items {
			if item.Match != nil {
				matched++
			} else {
				unmatched++
			}
		}
	}
	observeReceipt(err, matched, unmatched, time.Since(start))

	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, extraction)
}

// DebugOCR returns raw OCR fragments without cleaning or matching.
func (h *Handler) DebugOCR(c *gin.Context) {
	image, ok := h.readImageUpload(c)
	if !ok {
		return
	}

	fragments, err := h.receipts.DebugRecognize(c.Request.Context(), image)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fragments": fragments, "count": len(fragments)})
}

type saveReceiptRequest struct {
	Items []domain.ReceiptItem `json:"items" binding:"required"`
}

// SaveReceiptItems stores confirmed receipt items and updates stock.
func (h *Handler) SaveReceiptItems(c *gin.Context) {
	var req saveReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	receipt, err := h.receipts.SaveReceiptItems(c.Request.Context(), req.Items)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// GetReceipt returns one saved receipt.
func (h *Handler) GetReceipt(c *gin.Context) {
	receipt, err := h.receipts.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// ListReceipts returns all saved receipts.
func (h *Handler) ListReceipts(c *gin.Context) {
	receipts, err := h.receipts.ListReceipts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts, "count": len(receipts)})
}

type createBillRequest struct {
	Items []usecase.BillRequest `json:"items" binding:"required"`
}

// CreateBill generates a priced bill and decrements stock.
func (h *Handler) CreateBill(c *gin.Context) {
	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	bill, err := h.receipts.CreateBill(c.Request.Context(), req.Items)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

// GetBill returns one bill by number.
func (h *Handler) GetBill(c *gin.Context) {
	bill, err := h.receipts.GetBill(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// ListBills returns all bills.
func (h *Handler) ListBills(c *gin.Context) {
	bills, err := h.receipts.ListBills(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills, "count": len(bills)})
}

// AddInventoryItem creates a catalog entry.
func (h *Handler) AddInventoryItem(c *gin.Context) {
	var entry domain.CatalogEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	added, err := h.inventory.AddItem(c.Request.Context(), entry)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// GetInventoryItem returns one catalog entry.
func (h *Handler) GetInventoryItem(c *gin.Context) {
	entry, err := h.inventory.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateInventoryItem replaces a catalog entry.
func (h *Handler) UpdateInventoryItem(c *gin.Context) {
	var entry domain.CatalogEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry.ItemID = c.Param("id")

	updated, err := h.inventory.UpdateItem(c.Request.Context(), entry)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteInventoryItem removes a catalog entry.
func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	if err := h.inventory.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListInventory returns the full catalog.
func (h *Handler) ListInventory(c *gin.Context) {
	items, err := h.inventory.ListItems(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

type updateStockRequest struct {
	Delta float64 `json:"delta" binding:"required"`
}

// UpdateStock applies a signed stock delta to one item.
func (h *Handler) UpdateStock(c *gin.Context) {
	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.inventory.UpdateStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// SearchInventory ranks catalog entries against a free-text query.
func (h *Handler) SearchInventory(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	results, err := h.inventory.Search(c.Request.Context(), query, 20)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// LowStock returns items at or below the low-stock threshold.
func (h *Handler) LowStock(c *gin.Context) {
	h.writeItemList(c, h.inventory.LowStock)
}

// OutOfStock returns items with zero stock.
func (h *Handler) OutOfStock(c *gin.Context) {
	h.writeItemList(c, h.inventory.OutOfStock)
}

// ExpiringSoon returns items expiring within the warning window.
func (h *Handler) ExpiringSoon(c *gin.Context) {
	h.writeItemList(c, h.inventory.ExpiringSoon)
}

// Categories returns the distinct catalog categories.
func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.inventory.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Brands returns the distinct catalog brands.
func (h *Handler) Brands(c *gin.Context) {
	brands, err := h.inventory.Brands(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// InventorySummary returns aggregate stock statistics.
func (h *Handler) InventorySummary(c *gin.Context) {
	summary, err := h.inventory.Summary(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ImportInventory bulk-loads catalog entries from an uploaded .csv or
// .xlsx file.
func (h *Handler) ImportInventory(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form file 'file' is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.inventory.ImportCatalog(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeItemList(c *gin.Context, list func(ctx context.Context) ([]domain.CatalogEntry, error)) {
	items, err := list(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// readImageUpload validates and reads the multipart receipt image.
func (h *Handler) readImageUpload(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "form file 'image' is required"})
		return nil, false
	}

	if fileHeader.Size > h.ocrCfg.MaxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds maximum size of %d bytes", h.ocrCfg.MaxFileSize),
		})
		return nil, false
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	if !h.extensionAllowed(ext) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported file type %q", ext),
		})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return nil, false
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return nil, false
	}
	return image, true
}

func (h *Handler) extensionAllowed(ext string) bool {
	for _, allowed := range h.ocrCfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrMalformedFragment),
		errors.Is(err, domain.ErrUnsupportedFile):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrReceiptNotFound),
		errors.Is(err, domain.ErrBillNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrOCRUnavailable):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
