package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"backend/models"
	"backend/services"
	"backend/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// reloadPricing refreshes the in-memory measure cache after catalog writes.
func reloadPricing(gdb *gorm.DB, pricing *services.PricingService) {
	if measures, err := storage.ListMeasures(gdb); err == nil {
		pricing.Reload(measures)
	}
}

// CreateMeasure godoc
// @Summary      Create measure
// @Tags         measures
// @Accept       json
// @Produce      json
// @Param        body  body      models.Measure  true  "Measure"
// @Success      201   {object}  models.Measure
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/measures [post]
func CreateMeasure(gdb *gorm.DB, pricing *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m models.Measure
		if err := c.ShouldBindJSON(&m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !models.ValidFamily(m.Family) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid measure family"})
			return
		}
		if m.ConversionFactor <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Conversion factor must be positive"})
			return
		}

		// measures of one family must share a base unit
		var sibling models.Measure
		err := gdb.Where("family = ?", m.Family).First(&sibling).Error
		if err == nil && sibling.BaseUnitRef != m.BaseUnitRef {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Base unit must match the family's base unit"})
			return
		}

		if err := gdb.Create(&m).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		reloadPricing(gdb, pricing)
		c.JSON(http.StatusCreated, m)
	}
}

// GetMeasures godoc
// @Summary      List measures
// @Tags         measures
// @Success      200  {array}  models.Measure
// @Router       /api/measures [get]
func GetMeasures(pricing *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, pricing.Measures())
	}
}

// GetMeasureByID godoc
// @Summary      Get measure by ID
// @Tags         measures
// @Param        id   path      int  true  "Measure ID"
// @Success      200  {object}  models.Measure
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/measures/{id} [get]
func GetMeasureByID(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid measure ID"})
			return
		}

		var m models.Measure
		if err := gdb.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Measure not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, m)
	}
}

// UpdateMeasure godoc
// @Summary      Update measure
// @Tags         measures
// @Param        id    path      int             true  "Measure ID"
// @Param        body  body      models.Measure  true  "Measure"
// @Success      200   {object}  models.Measure
// @Router       /api/measures/{id} [put]
func UpdateMeasure(gdb *gorm.DB, pricing *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid measure ID"})
			return
		}

		var m models.Measure
		if err := c.ShouldBindJSON(&m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !models.ValidFamily(m.Family) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid measure family"})
			return
		}

		m.ID = id
		res := gdb.Model(&models.Measure{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":              m.Name,
			"short_name":        m.ShortName,
			"symbol":            m.Symbol,
			"family":            m.Family,
			"base_unit_ref":     m.BaseUnitRef,
			"conversion_factor": m.ConversionFactor,
		})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Measure not found"})
			return
		}
		reloadPricing(gdb, pricing)
		c.JSON(http.StatusOK, m)
	}
}

// DeleteMeasure godoc
// @Summary      Delete measure
// @Tags         measures
// @Param        id   path      int  true  "Measure ID"
// @Success      200  {object}  object
// @Router       /api/measures/{id} [delete]
func DeleteMeasure(gdb *gorm.DB, pricing *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid measure ID"})
			return
		}

		res := gdb.Delete(&models.Measure{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Measure not found"})
			return
		}
		reloadPricing(gdb, pricing)
		c.JSON(http.StatusOK, gin.H{"message": "Measure deleted successfully"})
	}
}

// GetAvailableMeasures godoc
// @Summary      List measures selectable for a product
// @Description  Same-family measures plus explicit price-matrix overrides.
// @Tags         measures
// @Param        id   path      int  true  "Product ID"
// @Success      200  {array}   models.Measure
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/products/{id}/measures [get]
func GetAvailableMeasures(db *sql.DB, pricing *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
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

		measures := pricing.AvailableMeasures(*product)
		if measures == nil {
			measures = []models.Measure{}
		}
		c.JSON(http.StatusOK, measures)
	}
}
