package handlers

import (
	"database/sql"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"backend/middleware"
	"backend/models"
	"backend/services"
	"backend/storage"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubmitQuote godoc
// @Summary      Submit a quote request
// @Description  Runs the full hardening pipeline: rate limiting per client and
// @Description  form kind, markup stripping, injection scan, field validation.
// @Description  Unit prices are re-derived server side; the stored quote gets a
// @Description  sequential Q-prefixed number and an optional summary email.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        body  body      models.QuoteSubmissionRequest  true  "Quote submission"
// @Success      201   {object}  models.QuoteSubmissionResponse
// @Failure      400   {object}  models.ValidationErrorResponse
// @Failure      429   {object}  models.RateLimitResponse
// @Failure      500   {object}  models.ErrorResponse
// @Router       /api/quotes [post]
func SubmitQuote(db *sql.DB, gdb *gorm.DB, pricing *services.PricingService, limiter *middleware.RateLimiter, emailSvc *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := middleware.ClientIdentifier(c)

		ok, retryAfter := limiter.Allow(identifier, "quote_request")
		if !ok {
			c.JSON(http.StatusTooManyRequests, models.RateLimitResponse{
				Error:             "rate_limit_exceeded",
				RetryAfterSeconds: int(math.Ceil(retryAfter.Seconds())),
			})
			return
		}

		var req models.QuoteSubmissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		sanitizeSubmission(&req)

		for _, field := range submissionTextFields(&req) {
			if utils.ContainsMaliciousContent(field) {
				log.Printf("[quote-submit] malicious content rejected, identifier=%s", identifier)
				c.JSON(http.StatusBadRequest, gin.H{"error": "malicious_content_detected"})
				return
			}
		}

		if fieldErrs := validateSubmission(&req); len(fieldErrs) > 0 {
			c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
				Error:  "validation_error",
				Fields: fieldErrs,
			})
			return
		}

		exists, err := storage.CountryExists(db, req.CountryID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking country"})
			return
		}
		if !exists {
			c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
				Error:  "validation_error",
				Fields: []models.FieldError{{Field: "country_id", Message: "Unknown destination country"}},
			})
			return
		}

		quote := &models.Quote{
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			Company:         req.Company,
			CountryID:       req.CountryID,
			RecipientEmail:  req.RecipientEmail,
			ShippingAddress: req.ShippingAddress,
			Message:         req.Message,
			Status:          models.QuoteStatusPending,
			Identifier:      identifier,
		}

		grandTotal := decimal.Zero
		for _, itemReq := range req.Items {
			product, err := storage.FindProduct(db, itemReq.ProductID)
			if err == sql.ErrNoRows {
				c.JSON(http.StatusBadRequest, models.ValidationErrorResponse{
					Error:  "validation_error",
					Fields: []models.FieldError{{Field: "items", Message: "Unknown product " + strconv.Itoa(itemReq.ProductID)}},
				})
				return
			} else if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading product"})
				return
			}

			// The stored price comes from the conversion engine, never from
			// the client. Lines whose measure cannot be converted fall back
			// to the product's base price and are flagged.
			unitPrice, priceOK := pricing.PriceForUnit(*product, itemReq.MeasureID)
			if !priceOK {
				unitPrice = decimal.NewFromFloat(product.BasePrice).Round(4)
			}
			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity))).Round(4)
			grandTotal = grandTotal.Add(lineTotal)

			if quote.Currency == "" {
				quote.Currency = product.Currency
			}

			uf, _ := unitPrice.Float64()
			tf, _ := lineTotal.Float64()
			quote.Items = append(quote.Items, models.QuoteItem{
				ProductID:       itemReq.ProductID,
				ProductName:     product.Name,
				MeasureID:       itemReq.MeasureID,
				Quantity:        itemReq.Quantity,
				UnitPrice:       uf,
				TotalPrice:      tf,
				Notes:           itemReq.Notes,
				Specifications:  itemReq.Specifications,
				ConversionError: !priceOK,
			})
		}
		quote.TotalAmount, _ = grandTotal.Round(4).Float64()

		if err := storage.InsertQuote(db, quote); err != nil {
			log.Printf("[quote-submit] insert failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving quote"})
			return
		}

		// Reload the stored row so the response carries names resolved by
		// the read path (country, measures).
		stored, err := storage.GetQuoteByID(db, quote.ID)
		if err != nil {
			stored = quote
		}

		emailSent := false
		if req.RecipientEmail != "" {
			emailSent = emailSvc.SendQuoteEmail(services.QuoteEmailData{
				Quote:       stored,
				CountryName: stored.CountryName,
			}, req.RecipientEmail)

			status := models.EmailStatusFailed
			var sentAt *time.Time
			if emailSent {
				status = models.EmailStatusSent
				now := time.Now()
				sentAt = &now
			}
			if err := storage.UpdateQuoteEmailStatus(db, quote.ID, status, sentAt); err != nil {
				log.Printf("[quote-submit] email status update failed for quote %d: %v", quote.ID, err)
			}
			stored.EmailStatus = status
			stored.EmailSentAt = sentAt
		}

		logEntry := &models.QuoteActivityLog{
			QuoteID:       quote.ID,
			QuoteNumber:   quote.QuoteNumber,
			ItemCount:     len(quote.Items),
			Company:       quote.Company,
			CustomerEmail: quote.CustomerEmail,
			EmailSent:     emailSent,
			Identifier:    identifier,
			EventName:     "quote_submitted",
			Description:   "Quote " + quote.QuoteNumber + " submitted with " + strconv.Itoa(len(quote.Items)) + " item(s)",
		}
		if err := storage.AppendActivityLog(gdb, logEntry); err != nil {
			log.Printf("[quote-submit] activity log append failed for quote %d: %v", quote.ID, err)
		}

		c.JSON(http.StatusCreated, models.QuoteSubmissionResponse{
			Quote:     stored,
			EmailSent: emailSent,
		})
	}
}

// GetQuoteByID godoc
// @Summary      Get a quote with its items
// @Tags         quotes
// @Param        id   path      int  true  "Quote ID"
// @Success      200  {object}  models.Quote
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotes/{id} [get]
func GetQuoteByID(db *sql.DB) gin.HandlerFunc {
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
		c.JSON(http.StatusOK, quote)
	}
}

// GetQuotes godoc
// @Summary      List quotes
// @Tags         quotes
// @Param        page    query  int     false  "Page"
// @Param        limit   query  int     false  "Limit"
// @Param        status  query  string  false  "Status filter"
// @Success      200     {object}  object
// @Router       /api/quotes [get]
func GetQuotes(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 20
		}
		offset := (page - 1) * limit

		where := ``
		args := []interface{}{}
		if status := c.Query("status"); status != "" {
			where = `WHERE q.status = $1`
			args = append(args, status)
		}

		var totalRecords int
		if err := db.QueryRow(`SELECT COUNT(*) FROM quotes q `+where, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting quotes"})
			return
		}

		query := `
			SELECT q.id, q.quote_number, q.customer_name, q.customer_email,
			       COALESCE(q.company, ''), q.country_id, COALESCE(co.name, ''),
			       q.status, q.total_amount, q.currency, COALESCE(q.email_status, ''),
			       q.created_at, q.updated_at
			FROM quotes q
			LEFT JOIN countries co ON co.id = q.country_id ` + where + `
			ORDER BY q.id DESC
			LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, limit, offset)

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying quotes"})
			return
		}
		defer rows.Close()

		quotes := []models.Quote{}
		for rows.Next() {
			var q models.Quote
			if err := rows.Scan(
				&q.ID, &q.QuoteNumber, &q.CustomerName, &q.CustomerEmail,
				&q.Company, &q.CountryID, &q.CountryName, &q.Status,
				&q.TotalAmount, &q.Currency, &q.EmailStatus,
				&q.CreatedAt, &q.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning quotes"})
				return
			}
			quotes = append(quotes, q)
		}

		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))
		c.JSON(http.StatusOK, gin.H{
			"quotes": quotes,
			"pagination": gin.H{
				"current_page":  page,
				"page_size":     limit,
				"total_records": totalRecords,
				"total_pages":   totalPages,
				"has_next":      page < totalPages,
				"has_prev":      page > 1,
			},
		})
	}
}

// SearchQuotes godoc
// @Summary      Search quotes by customer, company, number or status
// @Tags         quotes
// @Param        q          query  string  false  "Customer name/email/company/quote number"
// @Param        status     query  string  false  "Status"
// @Param        country_id query  int     false  "Destination country"
// @Param        page       query  int     false  "Page"
// @Param        limit      query  int     false  "Limit"
// @Success      200  {object}  object
// @Router       /api/quotes/search [get]
func SearchQuotes(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 20
		}
		offset := (page - 1) * limit

		where := `WHERE 1=1`
		args := []interface{}{}
		argPos := 1

		if q := c.Query("q"); q != "" {
			where += ` AND (q.customer_name ILIKE $` + strconv.Itoa(argPos) +
				` OR q.customer_email ILIKE $` + strconv.Itoa(argPos) +
				` OR q.company ILIKE $` + strconv.Itoa(argPos) +
				` OR q.quote_number ILIKE $` + strconv.Itoa(argPos) + `)`
			args = append(args, "%"+q+"%")
			argPos++
		}
		if status := c.Query("status"); status != "" {
			where += ` AND q.status = $` + strconv.Itoa(argPos)
			args = append(args, status)
			argPos++
		}
		if countryID := c.Query("country_id"); countryID != "" {
			if id, err := strconv.Atoi(countryID); err == nil {
				where += ` AND q.country_id = $` + strconv.Itoa(argPos)
				args = append(args, id)
				argPos++
			}
		}

		var totalRecords int
		if err := db.QueryRow(`SELECT COUNT(*) FROM quotes q `+where, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting quotes"})
			return
		}

		query := `
			SELECT q.id, q.quote_number, q.customer_name, q.customer_email,
			       COALESCE(q.company, ''), q.country_id, COALESCE(co.name, ''),
			       q.status, q.total_amount, q.currency, COALESCE(q.email_status, ''),
			       q.created_at, q.updated_at
			FROM quotes q
			LEFT JOIN countries co ON co.id = q.country_id ` + where + `
			ORDER BY q.id DESC
			LIMIT $` + strconv.Itoa(argPos) + ` OFFSET $` + strconv.Itoa(argPos+1)
		args = append(args, limit, offset)

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying quotes"})
			return
		}
		defer rows.Close()

		quotes := []models.Quote{}
		for rows.Next() {
			var q models.Quote
			if err := rows.Scan(
				&q.ID, &q.QuoteNumber, &q.CustomerName, &q.CustomerEmail,
				&q.Company, &q.CountryID, &q.CountryName, &q.Status,
				&q.TotalAmount, &q.Currency, &q.EmailStatus,
				&q.CreatedAt, &q.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning quotes"})
				return
			}
			quotes = append(quotes, q)
		}

		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))
		c.JSON(http.StatusOK, gin.H{
			"quotes": quotes,
			"pagination": gin.H{
				"current_page":  page,
				"page_size":     limit,
				"total_records": totalRecords,
				"total_pages":   totalPages,
				"has_next":      page < totalPages,
				"has_prev":      page > 1,
			},
		})
	}
}

// UpdateQuoteStatus godoc
// @Summary      Update a quote's review status
// @Tags         quotes
// @Param        id    path  int     true  "Quote ID"
// @Param        body  body  object  true  "{status}"
// @Success      200   {object}  models.Quote
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/quotes/{id}/status [put]
func UpdateQuoteStatus(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		switch body.Status {
		case models.QuoteStatusPending, models.QuoteStatusReviewed,
			models.QuoteStatusConfirmed, models.QuoteStatusRejected:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
			return
		}

		result, err := db.Exec(
			`UPDATE quotes SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			body.Status, id,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating quote"})
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		}

		quote, err := storage.GetQuoteByID(db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}
