package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"backend/models"

	"github.com/gin-gonic/gin"
)

// CreateCountry godoc
// @Summary      Create country
// @Tags         countries
// @Accept       json
// @Produce      json
// @Param        body  body      models.Country  true  "Country"
// @Success      201   {object}  models.Country
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/countries [post]
func CreateCountry(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var country models.Country
		if err := c.ShouldBindJSON(&country); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if country.Name == "" || len(country.Code) != 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Country needs a name and a 2-letter code"})
			return
		}

		query := `INSERT INTO countries (name, code, phone_code) VALUES ($1, $2, $3) RETURNING id`
		err := db.QueryRow(query, country.Name, country.Code, country.PhoneCode).Scan(&country.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, country)
	}
}

// GetCountries godoc
// @Summary      List countries
// @Tags         countries
// @Success      200  {array}  models.Country
// @Router       /api/countries [get]
func GetCountries(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(`SELECT id, name, code, phone_code FROM countries ORDER BY name`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer rows.Close()

		countries := []models.Country{}
		for rows.Next() {
			var country models.Country
			if err := rows.Scan(&country.ID, &country.Name, &country.Code, &country.PhoneCode); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			countries = append(countries, country)
		}

		c.JSON(http.StatusOK, countries)
	}
}

// GetCountryByID godoc
// @Summary      Get country by ID
// @Tags         countries
// @Param        id   path      int  true  "Country ID"
// @Success      200  {object}  models.Country
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/countries/{id} [get]
func GetCountryByID(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid country ID"})
			return
		}

		var country models.Country
		err = db.QueryRow(`SELECT id, name, code, phone_code FROM countries WHERE id=$1`, id).
			Scan(&country.ID, &country.Name, &country.Code, &country.PhoneCode)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, country)
	}
}
