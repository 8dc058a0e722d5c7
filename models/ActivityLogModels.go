package models

import "time"

// QuoteActivityLog is one append-only audit row written per successful quote
// submission, regardless of the email outcome.
type QuoteActivityLog struct {
	ID            int       `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	QuoteID       int       `json:"quote_id" gorm:"not null;index"`
	QuoteNumber   string    `json:"quote_number" gorm:"type:varchar(20);not null"`
	ItemCount     int       `json:"item_count"`
	Company       string    `json:"company" gorm:"type:varchar(150)"`
	CustomerEmail string    `json:"customer_email" gorm:"type:varchar(254)"`
	EmailSent     bool      `json:"email_sent"`
	Identifier    string    `json:"identifier" gorm:"type:varchar(64)"`
	EventName     string    `json:"event_name" gorm:"type:varchar(50)"`
	Description   string    `json:"description" gorm:"type:text"`
}

// TableName overrides the GORM table name
func (QuoteActivityLog) TableName() string {
	return "quote_activity_logs"
}
