package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreport "github.com/restobo/backend/internal/application/report"
	"github.com/restobo/backend/internal/domain/report"
)

// ReportHandler handles reporting API endpoints
type ReportHandler struct {
	BaseHandler
	extracts *appreport.StockExtractService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(extracts *appreport.StockExtractService) *ReportHandler {
	return &ReportHandler{extracts: extracts}
}

// parseUUIDList parses a comma separated list of UUIDs from a query param
func parseUUIDList(value string) ([]uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetStockExtract builds the hierarchical stock movement report
// @Summary Get stock extract report
// @Tags reports
// @Router /reports/stock-extract [get]
func (h *ReportHandler) GetStockExtract(c *gin.Context) {
	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		h.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	mode := report.Mode(c.DefaultQuery("report_type", string(report.ModeQuantity)))

	warehouseIDs, err := parseUUIDList(c.Query("warehouse_ids"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse_ids")
		return
	}
	categoryIDs, err := parseUUIDList(c.Query("category_ids"))
	if err != nil {
		h.BadRequest(c, "Invalid category_ids")
		return
	}

	extract, err := h.extracts.GetStockExtract(c.Request.Context(), appreport.StockExtractInput{
		StartDate:    start,
		EndDate:      endOfDay(end),
		Mode:         mode,
		WarehouseIDs: warehouseIDs,
		CategoryIDs:  categoryIDs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, extract)
}
