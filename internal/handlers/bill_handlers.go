package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"rentledger/internal/caching"
	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"
	"rentledger/internal/services"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

const billDocumentBucket = "bill-documents"

// BillHandlers handles billing engine HTTP requests.
type BillHandlers struct {
	billService services.BillService
	storage     services.StorageService
	cache       caching.CacheService
}

func NewBillHandlers(billService services.BillService, storage services.StorageService, cache caching.CacheService) *BillHandlers {
	return &BillHandlers{
		billService: billService,
		storage:     storage,
		cache:       cache,
	}
}

func (h *BillHandlers) invalidateStats(c echo.Context, ownerID uuid.UUID) {
	if err := h.cache.InvalidateOwnerCache(c.Request().Context(), ownerID); err != nil {
		log.Printf("WARN: failed to invalidate stats cache for owner %s: %v", ownerID, err)
	}
}

func (h *BillHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	bill, err := h.billService.Create(ctx, ownerID, &req)
	if err != nil {
		return common.SendError(c, err)
	}

	h.invalidateStats(c, ownerID)
	return common.SendSuccess(c, http.StatusCreated, "Bill created", bill)
}

func (h *BillHandlers) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}
	billID, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	bill, err := h.billService.GetByID(ctx, ownerID, billID)
	if err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Bill fetched", bill)
}

func (h *BillHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}
	billID, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var patch services.UpdateBillPatch
	if err := c.Bind(&patch); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	bill, err := h.billService.Update(ctx, ownerID, billID, &patch)
	if err != nil {
		return common.SendError(c, err)
	}

	h.invalidateStats(c, ownerID)
	return common.SendSuccess(c, http.StatusOK, "Bill updated", bill)
}

func (h *BillHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}
	billID, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req services.UpdateBillStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewValidationError("", "Invalid request format"))
	}

	bill, err := h.billService.UpdateStatus(ctx, ownerID, billID, &req)
	if err != nil {
		return common.SendError(c, err)
	}

	h.invalidateStats(c, ownerID)
	return common.SendSuccess(c, http.StatusOK, "Bill status updated", bill)
}

func (h *BillHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}
	billID, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.billService.Delete(ctx, ownerID, billID); err != nil {
		return common.SendError(c, err)
	}

	h.invalidateStats(c, ownerID)
	return common.SendSuccess(c, http.StatusOK, "Bill deleted", nil)
}

func (h *BillHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}

	filter := repositories.BillFilter{
		Status: c.QueryParam("status"),
		Month:  c.QueryParam("month"),
	}
	if rawYear := queryInt(c, "year", 0); rawYear > 0 {
		filter.Year = rawYear
	}
	if rawTenant := c.QueryParam("tenantId"); rawTenant != "" {
		tenantID, err := uuid.Parse(rawTenant)
		if err != nil {
			return common.SendError(c, common.NewValidationError("tenantId", "Invalid id format"))
		}
		filter.TenantID = &tenantID
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 100)

	bills, total, err := h.billService.List(ctx, ownerID, filter, page, limit)
	if err != nil {
		return common.SendError(c, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Bills fetched", echo.Map{
		"bills": bills,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *BillHandlers) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}

	if cached, err := h.cache.GetBillStats(ctx, ownerID); err == nil && cached != nil {
		return common.SendSuccess(c, http.StatusOK, "Bill statistics fetched", cached)
	}

	stats, err := h.billService.Stats(ctx, ownerID)
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.cache.SetBillStats(ctx, ownerID, stats, statsCacheTTL); err != nil {
		log.Printf("WARN: failed to cache bill stats for owner %s: %v", ownerID, err)
	}

	return common.SendSuccess(c, http.StatusOK, "Bill statistics fetched", stats)
}

// GeneratePDF renders the bill as a PDF, archives it in object storage
// and returns a presigned download link.
func (h *BillHandlers) GeneratePDF(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := ownerFromContext(c)
	if err != nil {
		return common.SendError(c, err)
	}
	billID, err := pathID(c, "id")
	if err != nil {
		return common.SendError(c, err)
	}

	bill, err := h.billService.GetByID(ctx, ownerID, billID)
	if err != nil {
		return common.SendError(c, err)
	}

	pdfBytes, err := renderBillPDF(bill)
	if err != nil {
		return common.SendError(c, common.NewDependencyError("Failed to generate PDF", err))
	}

	objectName := fmt.Sprintf("%s/%s.pdf", ownerID.String(), bill.ID.String())
	if err := h.storage.UploadDocument(ctx, billDocumentBucket, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return common.SendError(c, common.NewDependencyError("Failed to upload PDF to storage", err))
	}

	pdfURL, err := h.storage.GetPresignedURL(ctx, billDocumentBucket, objectName, 24*time.Hour)
	if err != nil {
		return common.SendError(c, common.NewDependencyError("Failed to generate download URL", err))
	}

	return common.SendSuccess(c, http.StatusOK, "PDF generated and uploaded successfully", echo.Map{
		"pdfUrl":    pdfURL,
		"expiresIn": "24 hours",
	})
}

func renderBillPDF(bill *models.Bill) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "RENT BILL")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Bill Number: %s", bill.ID.String()))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Billing Period: %s %d", bill.BillMonth, bill.BillYear))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Bill Date: %s", bill.BillDate.Format("02-Jan-2006")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Due Date: %s", bill.DueDate.Format("02-Jan-2006")))
	pdf.Ln(13)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILL TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, bill.TenantName)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Room: %s", bill.RoomNumber))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(130, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 0, "R", true, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	lines := []struct {
		label  string
		amount float64
	}{
		{"Rent", bill.RentAmount},
		{"Electricity", bill.ElectricityBill},
		{"Water", bill.WaterBill},
		{"Maintenance", bill.MaintenanceFee},
		{"Other Charges", bill.OtherCharges},
		{"Discount", -bill.Discount},
	}
	for _, line := range lines {
		pdf.CellFormat(130, 8, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", line.amount), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(220, 20, 60)
	pdf.CellFormat(130, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", bill.TotalAmount), "", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetTextColor(33, 37, 41)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Payment Status: %s", bill.PaymentStatus))
	pdf.Ln(8)
	if bill.PaymentDate != nil {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Paid On: %s", bill.PaymentDate.Format("02-Jan-2006")))
		pdf.Ln(6)
	}
	if bill.PaymentMethod != nil {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Payment Method: %s", *bill.PaymentMethod))
		pdf.Ln(6)
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "This is a computer generated bill.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
