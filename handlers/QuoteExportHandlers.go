package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"backend/services"
	"backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"
)

// GenerateQuotePDF godoc
// @Summary      Render a quote as a PDF document
// @Tags         quotes
// @Param        id   path  int  true  "Quote ID"
// @Success      200  "PDF file"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotes/{id}/pdf [get]
func GenerateQuotePDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		quote, err := storage.GetQuoteByID(db, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)

		// --- Header ---
		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(190, 10, "QUOTE REQUEST")
		pdf.Ln(12)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(95, 6, fmt.Sprintf("Quote No: %s", quote.QuoteNumber))
		pdf.Cell(95, 6, fmt.Sprintf("Status: %s", quote.Status))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(95, 6, fmt.Sprintf("Date: %s", quote.CreatedAt.Format("02-Jan-2006")))
		pdf.Ln(10)

		// --- Customer block ---
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(190, 8, "Customer")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		customer := quote.CustomerName
		if quote.Company != "" {
			customer += "\n" + quote.Company
		}
		customer += "\n" + quote.CustomerEmail
		if quote.CustomerPhone != "" {
			customer += "\n" + quote.CustomerPhone
		}
		if quote.CountryName != "" {
			customer += "\nDestination: " + quote.CountryName
		}
		pdf.MultiCell(120, 6, customer, "", "L", false)

		// QR carrying the quote number, top right.
		if png, err := qrcode.Encode(quote.QuoteNumber, qrcode.Medium, 256); err == nil {
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("quote_qr", opts, bytes.NewReader(png))
			pdf.ImageOptions("quote_qr", 160, 40, 35, 35, false, opts, 0, "")
		}
		pdf.Ln(8)

		// --- Items table ---
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(70, 8, "Product", "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 8, "Measure", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, "Unit Price", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, "Total", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range quote.Items {
			name := item.ProductName
			if item.ConversionError {
				name += " *"
			}
			pdf.CellFormat(70, 8, name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 8, item.MeasureName, "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 8, services.FormatAmount(quote.Currency, item.UnitPrice), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 8, services.FormatAmount(quote.Currency, item.TotalPrice), "1", 1, "R", false, 0, "")
		}

		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(155, 8, "Grand Total")
		pdf.CellFormat(35, 8, services.FormatAmount(quote.Currency, quote.TotalAmount), "1", 1, "R", false, 0, "")

		hasFlagged := false
		for _, item := range quote.Items {
			if item.ConversionError {
				hasFlagged = true
				break
			}
		}
		if hasFlagged {
			pdf.Ln(2)
			pdf.SetFont("Arial", "I", 9)
			pdf.Cell(190, 6, "* Unit conversion unavailable; product base price applied.")
			pdf.Ln(6)
		}

		if quote.Message != "" {
			pdf.Ln(6)
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(190, 8, "Message:")
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 6, quote.Message, "", "L", false)
		}

		// --- Footer ---
		pdf.SetY(-20)
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(190, 6, "This is a computer-generated quote summary. Prices are indicative until confirmed.")
		pdf.Ln(5)
		pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quote_%s.pdf", quote.QuoteNumber))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
	}
}

// ExportQuotesExcel godoc
// @Summary      Export quotes to an Excel workbook
// @Tags         quotes
// @Param        status  query  string  false  "Status filter"
// @Success      200  "Excel file"
// @Router       /api/quotes/export [get]
func ExportQuotesExcel(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		where := ``
		args := []interface{}{}
		if status := c.Query("status"); status != "" {
			where = `WHERE q.status = $1`
			args = append(args, status)
		}

		rows, err := db.Query(`
			SELECT q.id, q.quote_number, q.customer_name, q.customer_email,
			       COALESCE(q.company, ''), COALESCE(co.name, ''), q.status,
			       q.total_amount, q.currency, COALESCE(q.email_status, ''),
			       q.created_at,
			       (SELECT COUNT(*) FROM quote_items qi WHERE qi.quote_id = q.id)
			FROM quotes q
			LEFT JOIN countries co ON co.id = q.country_id `+where+`
			ORDER BY q.id DESC
		`, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying quotes"})
			return
		}
		defer rows.Close()

		f := excelize.NewFile()
		sheet := "Quotes"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Quote No", "Customer", "Email", "Company", "Country",
			"Status", "Items", "Total", "Currency", "Email Status", "Created"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		rowIdx := 2
		for rows.Next() {
			var (
				id, itemCount                                                 int
				number, name, email, company, country, status, currency, mail string
				total                                                         float64
				createdAt                                                     time.Time
			)
			if err := rows.Scan(&id, &number, &name, &email, &company, &country,
				&status, &total, &currency, &mail, &createdAt, &itemCount); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning quotes"})
				return
			}

			values := []interface{}{number, name, email, company, country,
				status, itemCount, total, currency, mail, createdAt.Format("2006-01-02 15:04")}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
				f.SetCellValue(sheet, cell, v)
			}
			rowIdx++
		}

		filename := fmt.Sprintf("quotes_export_%s.xlsx", time.Now().Format("20060102"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
