package handlers

import (
	"database/sql"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"backend/models"

	"github.com/gin-gonic/gin"
)

// GetQuoteActivityLogs godoc
// @Summary      Get quote activity logs
// @Tags         activity-logs
// @Param        page   query  int  false  "Page"
// @Param        limit  query  int  false  "Limit"
// @Success      200    {object}  object
// @Router       /api/logs [get]
func GetQuoteActivityLogs(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit < 1 {
			limit = 10
		}
		offset := (page - 1) * limit

		var totalRecords int
		if err := db.QueryRow(`SELECT COUNT(*) FROM quote_activity_logs`).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting logs"})
			return
		}

		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))

		rows, err := db.Query(`
			SELECT id, created_at, quote_id, quote_number, item_count, company,
			       customer_email, email_sent, identifier, event_name, description
			FROM quote_activity_logs
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying logs"})
			return
		}
		defer rows.Close()

		logs := []models.QuoteActivityLog{}
		for rows.Next() {
			var (
				entry       models.QuoteActivityLog
				company     sql.NullString
				email       sql.NullString
				identifier  sql.NullString
				eventName   sql.NullString
				description sql.NullString
			)
			if err := rows.Scan(
				&entry.ID, &entry.CreatedAt, &entry.QuoteID, &entry.QuoteNumber,
				&entry.ItemCount, &company, &email, &entry.EmailSent,
				&identifier, &eventName, &description,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning logs"})
				return
			}

			entry.Company = getStringOrEmpty(company)
			entry.CustomerEmail = getStringOrEmpty(email)
			entry.Identifier = getStringOrEmpty(identifier)
			entry.EventName = getStringOrEmpty(eventName)
			entry.Description = getStringOrEmpty(description)

			logs = append(logs, entry)
		}

		c.JSON(http.StatusOK, gin.H{
			"logs": logs,
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

func getStringOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// SearchQuoteActivityLogs godoc
// @Summary      Search quote activity logs
// @Tags         activity-logs
// @Param        quote_number    query  string  false  "Quote number"
// @Param        customer_email  query  string  false  "Customer email"
// @Param        company         query  string  false  "Company"
// @Param        identifier      query  string  false  "Client identifier"
// @Param        event_name      query  string  false  "Event name"
// @Param        page            query  int     false  "Page"
// @Param        limit           query  int     false  "Limit"
// @Success      200  {object}  object
// @Router       /api/logs/search [get]
func SearchQuoteActivityLogs(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := map[string]string{
			"quote_number":   c.Query("quote_number"),
			"customer_email": c.Query("customer_email"),
			"company":        c.Query("company"),
			"identifier":     c.Query("identifier"),
			"event_name":     c.Query("event_name"),
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 10
		}
		offset := (page - 1) * limit

		conditions := []string{}
		args := []interface{}{}
		argPos := 1
		for column, value := range filters {
			if value == "" {
				continue
			}
			conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", column, argPos))
			args = append(args, "%"+value+"%")
			argPos++
		}
		if quoteID := c.Query("quote_id"); quoteID != "" {
			if id, err := strconv.Atoi(quoteID); err == nil {
				conditions = append(conditions, fmt.Sprintf("quote_id = $%d", argPos))
				args = append(args, id)
				argPos++
			}
		}

		where := ""
		if len(conditions) > 0 {
			where = "WHERE " + strings.Join(conditions, " AND ")
		}

		var totalRecords int
		if err := db.QueryRow(`SELECT COUNT(*) FROM quote_activity_logs `+where, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting logs"})
			return
		}
		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))

		query := `
			SELECT id, created_at, quote_id, quote_number, item_count, company,
			       customer_email, email_sent, identifier, event_name, description
			FROM quote_activity_logs ` + where + `
			ORDER BY created_at DESC
			LIMIT $` + strconv.Itoa(argPos) + ` OFFSET $` + strconv.Itoa(argPos+1)
		args = append(args, limit, offset)

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying logs"})
			return
		}
		defer rows.Close()

		logs := []models.QuoteActivityLog{}
		for rows.Next() {
			var (
				entry       models.QuoteActivityLog
				company     sql.NullString
				email       sql.NullString
				identifier  sql.NullString
				eventName   sql.NullString
				description sql.NullString
			)
			if err := rows.Scan(
				&entry.ID, &entry.CreatedAt, &entry.QuoteID, &entry.QuoteNumber,
				&entry.ItemCount, &company, &email, &entry.EmailSent,
				&identifier, &eventName, &description,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning logs"})
				return
			}

			entry.Company = getStringOrEmpty(company)
			entry.CustomerEmail = getStringOrEmpty(email)
			entry.Identifier = getStringOrEmpty(identifier)
			entry.EventName = getStringOrEmpty(eventName)
			entry.Description = getStringOrEmpty(description)

			logs = append(logs, entry)
		}

		c.JSON(http.StatusOK, gin.H{
			"logs": logs,
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
