package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"backend/services"
	"backend/storage"

	"github.com/gin-gonic/gin"
)

func composeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Compose session not found"})
	case errors.Is(err, services.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not in compose session"})
	case errors.Is(err, services.ErrBadQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a positive integer"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func respondSnapshot(c *gin.Context, composer *services.ComposerService, token string) {
	snap, err := composer.Snapshot(token)
	if err != nil {
		composeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// CreateComposeSession godoc
// @Summary      Start a quote composition session
// @Tags         compose
// @Success      201  {object}  object
// @Router       /api/compose/session [post]
func CreateComposeSession(composer *services.ComposerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := composer.NewSession()
		c.JSON(http.StatusCreated, gin.H{"token": token})
	}
}

// GetComposeSession godoc
// @Summary      Current lines and grand total of a compose session
// @Tags         compose
// @Param        token  path      string  true  "Session token"
// @Success      200    {object}  services.ComposeSnapshot
// @Failure      404    {object}  models.ErrorResponse
// @Router       /api/compose/{token} [get]
func GetComposeSession(composer *services.ComposerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondSnapshot(c, composer, c.Param("token"))
	}
}

// AddComposeProduct godoc
// @Summary      Add a product to the session
// @Description  Adding a product already in the session is a no-op. The line
// @Description  starts with the product's base measure and quantity 1.
// @Tags         compose
// @Param        token  path  string  true  "Session token"
// @Param        body   body  object  true  "{product_id}"
// @Success      200    {object}  services.ComposeSnapshot
// @Router       /api/compose/{token}/products [post]
func AddComposeProduct(db *sql.DB, composer *services.ComposerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ProductID int `json:"product_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.ProductID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
			return
		}

		product, err := storage.FindProduct(db, body.ProductID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		token := c.Param("token")
		if err := composer.AddProduct(token, *product); err != nil {
			composeError(c, err)
			return
		}
		respondSnapshot(c, composer, token)
	}
}

// RemoveComposeProduct godoc
// @Summary      Remove a product's line from the session
// @Tags         compose
// @Param        token       path  string  true  "Session token"
// @Param        product_id  path  int     true  "Product ID"
// @Success      200  {object}  services.ComposeSnapshot
// @Router       /api/compose/{token}/products/{product_id} [delete]
func RemoveComposeProduct(composer *services.ComposerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		token := c.Param("token")
		if err := composer.RemoveProduct(token, productID); err != nil {
			composeError(c, err)
			return
		}
		respondSnapshot(c, composer, token)
	}
}

// SetComposeQuantity godoc
// @Summary      Change a line's quantity
// @Tags         compose
// @Param        token       path  string  true  "Session token"
// @Param        product_id  path  int     true  "Product ID"
// @Param        body        body  object  true  "{quantity}"
// @Success      200  {object}  services.ComposeSnapshot
// @Router       /api/compose/{token}/products/{product_id}/quantity [put]
func SetComposeQuantity(composer *services.ComposerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		var body struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		token := c.Param("token")
		if err := composer.SetQuantity(token, productID, body.Quantity); err != nil {
			composeError(c, err)
			return
		}
		respondSnapshot(c, composer, token)
	}
}

// SetComposeMeasure godoc
// @Summary      Change a line's unit of measure
// @Description  Re-resolves the unit price. Unavailable conversions flag the
// @Description  line and fall back to the product's base price.
// @Tags         compose
// @Param        token       path  string  true  "Session token"
// @Param        product_id  path  int     true  "Product ID"
// @Param        body        body  object  true  "{measure_id}"
// @Success      200  {object}  services.ComposeSnapshot
// @Router       /api/compose/{token}/products/{product_id}/measure [put]
func SetComposeMeasure(composer *services.ComposerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		var body struct {
			MeasureID int `json:"measure_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.MeasureID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "measure_id is required"})
			return
		}

		token := c.Param("token")
		if err := composer.SetMeasure(token, productID, body.MeasureID); err != nil {
			composeError(c, err)
			return
		}
		respondSnapshot(c, composer, token)
	}
}

// SetComposeNotes godoc
// @Summary      Set a line's free-text notes
// @Tags         compose
// @Param        token       path  string  true  "Session token"
// @Param        product_id  path  int     true  "Product ID"
// @Param        body        body  object  true  "{notes}"
// @Success      200  {object}  services.ComposeSnapshot
// @Router       /api/compose/{token}/products/{product_id}/notes [put]
func SetComposeNotes(composer *services.ComposerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		var body struct {
			Notes string `json:"notes"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		token := c.Param("token")
		if err := composer.SetNotes(token, productID, body.Notes); err != nil {
			composeError(c, err)
			return
		}
		respondSnapshot(c, composer, token)
	}
}
