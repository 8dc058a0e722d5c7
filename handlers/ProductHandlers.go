package handlers

import (
	"database/sql"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"backend/models"
	"backend/services"
	"backend/storage"

	"github.com/gin-gonic/gin"
)

// GetProducts godoc
// @Summary      List products
// @Tags         products
// @Param        page   query  int     false  "Page"
// @Param        limit  query  int     false  "Limit"
// @Param        q      query  string  false  "Name/SKU search"
// @Success      200    {object}  object
// @Router       /api/products [get]
func GetProducts(db *sql.DB) gin.HandlerFunc {
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
		search := c.Query("q")

		where := `WHERE active = TRUE`
		args := []interface{}{}
		if search != "" {
			where += ` AND (name ILIKE $1 OR sku ILIKE $1)`
			args = append(args, "%"+search+"%")
		}

		var totalRecords int
		if err := db.QueryRow(`SELECT COUNT(*) FROM products `+where, args...).Scan(&totalRecords); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting products"})
			return
		}

		query := `
			SELECT id, name, sku, description, base_price, price_unit, currency,
			       price_matrix, category_id, active, created_at, updated_at
			FROM products ` + where + `
			ORDER BY name
			LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, limit, offset)

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying products"})
			return
		}
		defer rows.Close()

		products := []models.Product{}
		for rows.Next() {
			var p models.Product
			var matrixJSON []byte
			var categoryID sql.NullInt64
			if err := rows.Scan(
				&p.ID, &p.Name, &p.SKU, &p.Description, &p.BasePrice, &p.PriceUnit,
				&p.Currency, &matrixJSON, &categoryID, &p.Active, &p.CreatedAt, &p.UpdatedAt,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning products"})
				return
			}
			p.CategoryID = int(categoryID.Int64)
			if len(matrixJSON) > 0 {
				_ = json.Unmarshal(matrixJSON, &p.PriceMatrix)
			}
			products = append(products, p)
		}

		totalPages := int(math.Ceil(float64(totalRecords) / float64(limit)))
		c.JSON(http.StatusOK, gin.H{
			"products": products,
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

// GetProductByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  models.Product
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/products/{id} [get]
func GetProductByID(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		p, err := storage.FindProduct(db, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// GetProductPrice godoc
// @Summary      Preview the converted price for a product and measure
// @Description  Server-side conversion; the same engine prices persisted quotes.
// @Tags         products
// @Param        id          path   int  true   "Product ID"
// @Param        measure_id  query  int  true   "Target measure ID"
// @Param        quantity    query  int  false  "Quantity (default 1)"
// @Success      200  {object}  models.PricePreview
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/products/{id}/price [get]
func GetProductPrice(db *sql.DB, pricing *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		measureID, err := strconv.Atoi(c.Query("measure_id"))
		if err != nil || measureID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid measure_id"})
			return
		}
		quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
		if err != nil || quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
			return
		}

		product, err := storage.FindProduct(db, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		preview := models.PricePreview{
			ProductID: product.ID,
			MeasureID: measureID,
			Currency:  product.Currency,
		}
		if unit, ok := pricing.PriceForUnit(*product, measureID); ok {
			total, _ := pricing.ConvertTotal(*product, measureID, quantity)
			preview.Available = true
			preview.UnitPrice, _ = unit.Float64()
			preview.Quantity = quantity
			preview.TotalPrice, _ = total.Float64()
		}
		c.JSON(http.StatusOK, preview)
	}
}
