package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"backend/models"
	"backend/repository"
	"backend/utils"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var db *sql.DB

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return db
}

func GetDB() *sql.DB {
	return db
}

// EnsureQuoteTables creates the quote-side tables when they do not exist.
// The measure catalog and activity log tables are migrated by GORM.
func EnsureQuoteTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			code VARCHAR(2) NOT NULL,
			phone_code VARCHAR(10) NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name VARCHAR(150) NOT NULL,
			sku VARCHAR(50) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			base_price DECIMAL(14,4) NOT NULL,
			price_unit VARCHAR(50) NOT NULL,
			currency VARCHAR(3) NOT NULL DEFAULT 'USD',
			price_matrix JSONB,
			category_id INT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS quotes (
			id SERIAL PRIMARY KEY,
			quote_number VARCHAR(20) NOT NULL DEFAULT '',
			customer_name VARCHAR(100) NOT NULL,
			customer_email VARCHAR(254) NOT NULL,
			customer_phone VARCHAR(20) NOT NULL DEFAULT '',
			company VARCHAR(150) NOT NULL DEFAULT '',
			country_id INT NOT NULL,
			recipient_email VARCHAR(254) NOT NULL DEFAULT '',
			shipping_address JSONB,
			message TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			total_amount DECIMAL(14,4) NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'USD',
			email_status VARCHAR(10),
			email_sent_at TIMESTAMP,
			identifier VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS quote_items (
			id SERIAL PRIMARY KEY,
			quote_id INT NOT NULL REFERENCES quotes(id),
			product_id INT NOT NULL,
			measure_id INT NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(14,4) NOT NULL,
			total_price DECIMAL(14,4) NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			specifications JSONB,
			conversion_error BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure quote tables: %w", err)
		}
	}
	return nil
}

// InsertQuote persists the quote header and its items in one transaction.
// The quote number is derived from the serial id inside the same
// transaction, so allocation is atomic and two concurrent submissions can
// never receive the same number.
func InsertQuote(db *sql.DB, q *models.Quote) error {
	ctx, cancel := utils.GetDefaultQueryContext(nil)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin quote transaction: %w", err)
	}
	defer tx.Rollback()

	shippingJSON, _ := json.Marshal(q.ShippingAddress)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO quotes
		(customer_name, customer_email, customer_phone, company, country_id,
		 recipient_email, shipping_address, message, status, total_amount,
		 currency, identifier)
		VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at`,
		q.CustomerName, q.CustomerEmail, q.CustomerPhone, q.Company, q.CountryID,
		q.RecipientEmail, string(shippingJSON), q.Message, q.Status, q.TotalAmount,
		q.Currency, q.Identifier,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert quote header: %w", err)
	}

	q.QuoteNumber = repository.FormatQuoteNumber(q.ID)
	if _, err := tx.ExecContext(ctx,
		`UPDATE quotes SET quote_number=$1 WHERE id=$2`, q.QuoteNumber, q.ID); err != nil {
		return fmt.Errorf("failed to set quote number: %w", err)
	}

	for i := range q.Items {
		item := &q.Items[i]
		item.QuoteID = q.ID
		specJSON, _ := json.Marshal(item.Specifications)
		err := tx.QueryRowContext(ctx, `
			INSERT INTO quote_items
			(quote_id, product_id, measure_id, quantity, unit_price, total_price,
			 notes, specifications, conversion_error)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8::jsonb,$9)
			RETURNING id`,
			item.QuoteID, item.ProductID, item.MeasureID, item.Quantity,
			item.UnitPrice, item.TotalPrice, item.Notes, string(specJSON),
			item.ConversionError,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert quote item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quote: %w", err)
	}
	return nil
}

// LastQuoteID returns the highest persisted quote id, 0 when none exist.
func LastQuoteID(db *sql.DB) (int, error) {
	ctx, cancel := utils.GetFastQueryContext(nil)
	defer cancel()

	var id int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM quotes`).Scan(&id)
	return id, err
}

// UpdateQuoteEmailStatus records the notification outcome on the quote row.
func UpdateQuoteEmailStatus(db *sql.DB, quoteID int, status string, sentAt *time.Time) error {
	ctx, cancel := utils.GetFastQueryContext(nil)
	defer cancel()

	_, err := db.ExecContext(ctx,
		`UPDATE quotes SET email_status=$1, email_sent_at=$2, updated_at=NOW() WHERE id=$3`,
		status, sentAt, quoteID)
	if err != nil {
		return fmt.Errorf("failed to update email status for quote %d: %w", quoteID, err)
	}
	return nil
}

// GetQuoteByID loads a quote header with its items and display names.
func GetQuoteByID(db *sql.DB, id int) (*models.Quote, error) {
	ctx, cancel := utils.GetDefaultQueryContext(nil)
	defer cancel()

	var q models.Quote
	var shippingJSON []byte
	var emailStatus sql.NullString
	var emailSentAt sql.NullTime
	var countryName sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT q.id, q.quote_number, q.customer_name, q.customer_email,
		       q.customer_phone, q.company, q.country_id, c.name,
		       q.recipient_email, q.shipping_address, q.message, q.status,
		       q.total_amount, q.currency, q.email_status, q.email_sent_at,
		       q.created_at, q.updated_at
		FROM quotes q
		LEFT JOIN countries c ON q.country_id = c.id
		WHERE q.id = $1`, id).Scan(
		&q.ID, &q.QuoteNumber, &q.CustomerName, &q.CustomerEmail,
		&q.CustomerPhone, &q.Company, &q.CountryID, &countryName,
		&q.RecipientEmail, &shippingJSON, &q.Message, &q.Status,
		&q.TotalAmount, &q.Currency, &emailStatus, &emailSentAt,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	q.CountryName = countryName.String
	q.EmailStatus = emailStatus.String
	if emailSentAt.Valid {
		t := emailSentAt.Time
		q.EmailSentAt = &t
	}
	if len(shippingJSON) > 0 {
		_ = json.Unmarshal(shippingJSON, &q.ShippingAddress)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT qi.id, qi.product_id, p.name, qi.measure_id, m.name,
		       qi.quantity, qi.unit_price, qi.total_price, qi.notes,
		       qi.specifications, qi.conversion_error
		FROM quote_items qi
		LEFT JOIN products p ON qi.product_id = p.id
		LEFT JOIN measures m ON qi.measure_id = m.id
		WHERE qi.quote_id = $1
		ORDER BY qi.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.QuoteItem
		var productName, measureName sql.NullString
		var specJSON []byte
		if err := rows.Scan(
			&item.ID, &item.ProductID, &productName, &item.MeasureID, &measureName,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.Notes,
			&specJSON, &item.ConversionError,
		); err != nil {
			return nil, err
		}
		item.QuoteID = q.ID
		item.ProductName = productName.String
		item.MeasureName = measureName.String
		if len(specJSON) > 0 {
			_ = json.Unmarshal(specJSON, &item.Specifications)
		}
		q.Items = append(q.Items, item)
	}

	return &q, rows.Err()
}

// FindProduct loads one pricing-relevant product row.
func FindProduct(db *sql.DB, id int) (*models.Product, error) {
	ctx, cancel := utils.GetFastQueryContext(nil)
	defer cancel()

	var p models.Product
	var matrixJSON []byte
	var categoryID sql.NullInt64
	err := db.QueryRowContext(ctx, `
		SELECT id, name, sku, description, base_price, price_unit, currency,
		       price_matrix, category_id, active, created_at, updated_at
		FROM products WHERE id = $1`, id).Scan(
		&p.ID, &p.Name, &p.SKU, &p.Description, &p.BasePrice, &p.PriceUnit,
		&p.Currency, &matrixJSON, &categoryID, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CategoryID = int(categoryID.Int64)
	if len(matrixJSON) > 0 {
		_ = json.Unmarshal(matrixJSON, &p.PriceMatrix)
	}
	return &p, nil
}

// CountryExists checks a submitted country id against the reference table.
func CountryExists(db *sql.DB, id int) (bool, error) {
	ctx, cancel := utils.GetFastQueryContext(nil)
	defer cancel()

	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM countries WHERE id = $1`, id).Scan(&count)
	return count > 0, err
}
