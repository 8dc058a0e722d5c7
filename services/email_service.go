package services

import (
	"database/sql"
	"fmt"
	"html"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"

	"backend/models"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	xhtml "golang.org/x/net/html"
)

// EmailService delivers the quote summary mail. Delivery failure is never
// fatal to quote creation; the caller records the outcome on the quote row.
type EmailService struct {
	db       *sql.DB
	host     string
	port     string
	username string
	password string
	from     string
}

// NewEmailService reads SMTP settings from the environment. An empty host
// disables delivery (SendQuoteEmail then reports failure without dialing).
func NewEmailService(db *sql.DB) *EmailService {
	return &EmailService{
		db:       db,
		host:     os.Getenv("SMTP_HOST"),
		port:     getenvDefault("SMTP_PORT", "587"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getenvDefault("SMTP_FROM", "quotes@example.com"),
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// QuoteEmailData is everything the summary template needs.
type QuoteEmailData struct {
	Quote       *models.Quote
	CountryName string
}

// RenderQuoteEmailHTML builds the fixed quote summary template: header,
// customer block, itemized table, grand total, optional message, contact
// footer.
func RenderQuoteEmailHTML(data QuoteEmailData) string {
	q := data.Quote

	var b strings.Builder
	b.WriteString(`<html><body>`)
	b.WriteString(fmt.Sprintf(`<h2>Quote Request %s</h2>`, html.EscapeString(q.QuoteNumber)))

	b.WriteString(`<div>`)
	b.WriteString(fmt.Sprintf(`<p><strong>Customer:</strong> %s</p>`, html.EscapeString(q.CustomerName)))
	b.WriteString(fmt.Sprintf(`<p><strong>Email:</strong> %s</p>`, html.EscapeString(q.CustomerEmail)))
	if q.CustomerPhone != "" {
		b.WriteString(fmt.Sprintf(`<p><strong>Phone:</strong> %s</p>`, html.EscapeString(q.CustomerPhone)))
	}
	if q.Company != "" {
		b.WriteString(fmt.Sprintf(`<p><strong>Company:</strong> %s</p>`, html.EscapeString(q.Company)))
	}
	if data.CountryName != "" {
		b.WriteString(fmt.Sprintf(`<p><strong>Country:</strong> %s</p>`, html.EscapeString(data.CountryName)))
	}
	b.WriteString(`</div>`)

	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0">`)
	b.WriteString(`<tr><th>Product</th><th>Unit</th><th>Quantity</th><th>Unit Price</th><th>Line Total</th></tr>`)
	for _, item := range q.Items {
		name := item.ProductName
		if item.ConversionError {
			name += " (unit conversion unavailable, base price applied)"
		}
		b.WriteString(fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
			html.EscapeString(name),
			html.EscapeString(item.MeasureName),
			item.Quantity,
			FormatAmount(q.Currency, item.UnitPrice),
			FormatAmount(q.Currency, item.TotalPrice),
		))
	}
	b.WriteString(fmt.Sprintf(`<tr><td colspan="4"><strong>Grand Total</strong></td><td><strong>%s</strong></td></tr>`,
		FormatAmount(q.Currency, q.TotalAmount)))
	b.WriteString(`</table>`)

	if q.Message != "" {
		b.WriteString(fmt.Sprintf(`<p><strong>Message:</strong> %s</p>`, html.EscapeString(q.Message)))
	}

	b.WriteString(`<hr><p>This request was generated automatically. Reply to the customer address above, or contact sales@example.com.</p>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

// FormatAmount renders a currency amount for display. Unknown ISO codes fall
// back to "CODE 1.23".
func FormatAmount(code string, v float64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %.2f", code, v)
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(v)))
}

// ConvertHTMLToText flattens the HTML summary into plain text for the mail
// body.
func ConvertHTMLToText(htmlContent string) string {
	doc, err := xhtml.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extract func(*xhtml.Node)
	extract = func(n *xhtml.Node) {
		switch n.Type {
		case xhtml.TextNode:
			text.WriteString(n.Data)
		case xhtml.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "table", "tr", "hr":
				text.WriteString("\n")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extract(child)
		}
	}
	extract(doc)

	result := text.String()
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(result)
}

// SendQuoteEmail renders the summary and attempts delivery to the recipient.
// Returns whether the mail was sent; errors are logged, not propagated as
// pipeline failures.
func (es *EmailService) SendQuoteEmail(data QuoteEmailData, recipientEmail string) bool {
	if recipientEmail == "" {
		return false
	}
	if es.host == "" {
		log.Printf("[quote-email] SMTP not configured, skipping delivery for %s", data.Quote.QuoteNumber)
		return false
	}

	subject := fmt.Sprintf("Quote Request %s from %s", data.Quote.QuoteNumber, data.Quote.CustomerName)
	body := ConvertHTMLToText(RenderQuoteEmailHTML(data))

	headers := []string{
		"From: " + es.from,
		"To: " + recipientEmail,
		"Subject: " + subject,
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	auth := smtp.PlainAuth("", es.username, es.password, es.host)
	err := smtp.SendMail(es.host+":"+es.port, auth, es.from, []string{recipientEmail}, msg)
	if err != nil {
		log.Printf("[quote-email] delivery failed for %s: %v", data.Quote.QuoteNumber, err)
		return false
	}
	return true
}

// RetryFailedQuoteEmails re-attempts delivery for quotes whose notification
// failed during the last week. Run from the maintenance cron.
func (es *EmailService) RetryFailedQuoteEmails(getQuote func(id int) (*models.Quote, error), markSent func(id int, sentAt time.Time) error) error {
	rows, err := es.db.Query(`
		SELECT id FROM quotes
		WHERE email_status = $1
		  AND recipient_email <> ''
		  AND created_at > NOW() - INTERVAL '7 days'
		ORDER BY id`, models.EmailStatusFailed)
	if err != nil {
		return fmt.Errorf("failed to fetch quotes for email retry: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		q, err := getQuote(id)
		if err != nil {
			log.Printf("[quote-email] retry skip quote %d: %v", id, err)
			continue
		}
		if es.SendQuoteEmail(QuoteEmailData{Quote: q, CountryName: q.CountryName}, q.RecipientEmail) {
			if err := markSent(id, time.Now()); err != nil {
				log.Printf("[quote-email] retry mark sent failed for quote %d: %v", id, err)
			}
		}
	}
	return nil
}
