package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/application/service"
	"github.com/learnhub/backoffice/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	voucherService service.VoucherService
	bulkIssuer     service.BulkIssuer
	exporter       port.VoucherExporter
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	voucherService service.VoucherService,
	bulkIssuer service.BulkIssuer,
	exporter port.VoucherExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		voucherService: voucherService,
		bulkIssuer:     bulkIssuer,
		exporter:       exporter,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// CreateVoucherRequest is the body of a manual voucher creation.
type CreateVoucherRequest struct {
	Code           string          `json:"code" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	MaxRedemptions *int            `json:"max_redemptions"`
	ExpiresAt      *time.Time      `json:"expires_at"`
}

// BulkIssueRequest is the body of a bulk issuance.
type BulkIssueRequest struct {
	Count            int                 `json:"count" binding:"required"`
	Amount           decimal.Decimal     `json:"amount"`
	Description      string              `json:"description"`
	MaxRedemptions   *int                `json:"max_redemptions"`
	ExpiresAt        *time.Time          `json:"expires_at"`
	Recipients       []service.Recipient `json:"recipients"`
	SendEmail        bool                `json:"send_email"`
	DistributionMode string              `json:"distribution_mode"`
}

// RedeemRequest is the body of a redemption attempt.
type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// VoucherResponse represents a voucher in API responses
type VoucherResponse struct {
	ID                 int64   `json:"id"`
	Code               string  `json:"code"`
	Amount             string  `json:"amount"`
	Description        string  `json:"description,omitempty"`
	Status             string  `json:"status"`
	MaxRedemptions     *int    `json:"max_redemptions,omitempty"`
	CurrentRedemptions int     `json:"current_redemptions"`
	ExpiresAt          *string `json:"expires_at,omitempty"`
	IsActive           bool    `json:"is_active"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// VoucherListResponse is the classified voucher listing for the admin UI.
type VoucherListResponse struct {
	Vouchers []VoucherResponse    `json:"vouchers"`
	Counts   service.StatusCounts `json:"counts"`
}

// BulkIssueResponse represents the bulk issuance outcome in API responses
type BulkIssueResponse struct {
	BatchID      string                `json:"batch_id"`
	Vouchers     []VoucherResponse     `json:"vouchers"`
	EmailResults []service.EmailResult `json:"email_results,omitempty"`
	Summary      string                `json:"summary"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateVoucher handles POST /api/admin/vouchers
func (h *Handlers) CreateVoucher(c *gin.Context) {
	var req CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid create voucher request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	voucher, err := h.voucherService.Create(c.Request.Context(), service.CreateVoucherInput{
		Code:           req.Code,
		Amount:         req.Amount,
		Description:    req.Description,
		MaxRedemptions: req.MaxRedemptions,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		h.respondError(c, err, "failed to create voucher")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toVoucherResponse(voucher, time.Now()),
	})
}

// GetVoucher handles GET /api/admin/vouchers/:id
func (h *Handlers) GetVoucher(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	view, err := h.voucherService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "failed to retrieve voucher")
		return
	}

	resp := toVoucherResponse(view.Voucher, time.Time{})
	resp.Status = string(view.Status)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    resp,
	})
}

// ListVouchers handles GET /api/admin/vouchers
func (h *Handlers) ListVouchers(c *gin.Context) {
	list, err := h.voucherService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list vouchers", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve vouchers",
		})
		return
	}

	response := VoucherListResponse{
		Vouchers: make([]VoucherResponse, 0, len(list.Vouchers)),
		Counts:   list.Counts,
	}
	for _, view := range list.Vouchers {
		resp := toVoucherResponse(view.Voucher, time.Time{})
		resp.Status = string(view.Status)
		response.Vouchers = append(response.Vouchers, resp)
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// BulkIssueVouchers handles POST /api/admin/vouchers/bulk
func (h *Handlers) BulkIssueVouchers(c *gin.Context) {
	var req BulkIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid bulk issue request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.bulkIssuer.Issue(c.Request.Context(), service.BulkIssueRequest{
		Count:            req.Count,
		Amount:           req.Amount,
		Description:      req.Description,
		MaxRedemptions:   req.MaxRedemptions,
		ExpiresAt:        req.ExpiresAt,
		Recipients:       req.Recipients,
		SendEmail:        req.SendEmail,
		DistributionMode: service.DistributionMode(req.DistributionMode),
	})
	if err != nil {
		h.respondError(c, err, "bulk issuance failed")
		return
	}

	now := time.Now()
	response := BulkIssueResponse{
		BatchID:      result.BatchID,
		Vouchers:     make([]VoucherResponse, 0, len(result.Vouchers)),
		EmailResults: result.EmailResults,
		Summary:      result.Summary,
	}
	for _, v := range result.Vouchers {
		response.Vouchers = append(response.Vouchers, toVoucherResponse(v, now))
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    response,
	})
}

// DeleteVoucher handles DELETE /api/admin/vouchers/:id
func (h *Handlers) DeleteVoucher(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.voucherService.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("Failed to delete voucher", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to delete voucher",
		})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// DeleteAllVouchers handles DELETE /api/admin/vouchers
func (h *Handlers) DeleteAllVouchers(c *gin.Context) {
	count, err := h.voucherService.DeleteAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to delete vouchers", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to delete vouchers",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"count": count},
	})
}

// DeactivateVoucher handles POST /api/admin/vouchers/:id/deactivate
func (h *Handlers) DeactivateVoucher(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.voucherService.Deactivate(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "failed to deactivate voucher")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportVouchers handles GET /api/admin/vouchers/export
func (h *Handlers) ExportVouchers(c *gin.Context) {
	list, err := h.voucherService.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list vouchers for export", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve vouchers",
		})
		return
	}

	vouchers := make([]*entity.Voucher, 0, len(list.Vouchers))
	for _, view := range list.Vouchers {
		vouchers = append(vouchers, view.Voucher)
	}

	data, err := h.exporter.Export(vouchers)
	if err != nil {
		h.logger.Error("Failed to export vouchers", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export vouchers",
		})
		return
	}

	filename := "vouchers-" + time.Now().Format("20060102-150405") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// RedeemVoucher handles POST /api/vouchers/redeem
func (h *Handlers) RedeemVoucher(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	voucher, err := h.voucherService.Redeem(c.Request.Context(), req.Code)
	if err != nil {
		h.respondError(c, err, "redemption failed")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toVoucherResponse(voucher, time.Now()),
	})
}

// parseID extracts the :id path parameter, responding with 400 on failure.
func (h *Handlers) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid voucher ID", "id", idStr, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid voucher ID",
		})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors to HTTP statuses.
func (h *Handlers) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case entity.IsValidation(err):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrDuplicateCode):
		c.JSON(http.StatusConflict, Response{Success: false, Error: "voucher code already exists"})
	case errors.Is(err, entity.ErrVoucherNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "voucher not found"})
	case errors.Is(err, entity.ErrVoucherInactive),
		errors.Is(err, entity.ErrVoucherExpired),
		errors.Is(err, entity.ErrVoucherExhausted):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: fallback})
	}
}

// toVoucherResponse converts a domain entity to the API shape. When now is
// the zero time the status field is left for the caller to fill.
func toVoucherResponse(v *entity.Voucher, now time.Time) VoucherResponse {
	resp := VoucherResponse{
		ID:                 v.ID,
		Code:               v.Code,
		Amount:             v.Amount.StringFixed(2),
		Description:        v.Description,
		MaxRedemptions:     v.MaxRedemptions,
		CurrentRedemptions: v.CurrentRedemptions,
		IsActive:           v.IsActive,
		CreatedAt:          v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          v.UpdatedAt.Format(time.RFC3339),
	}
	if !now.IsZero() {
		resp.Status = string(v.Status(now))
	}
	if v.ExpiresAt != nil {
		expires := v.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &expires
	}
	return resp
}
