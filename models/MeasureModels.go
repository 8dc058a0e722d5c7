package models

// Measure families. Measures are convertible only within their own family.
const (
	FamilyWeight    = "WEIGHT"
	FamilyVolume    = "VOLUME"
	FamilyLength    = "LENGTH"
	FamilyArea      = "AREA"
	FamilyCount     = "COUNT"
	FamilyContainer = "CONTAINER"
)

// Measure is a unit of measure. ConversionFactor is how many family base units
// equal one unit of this measure (kg -> 1, metric ton -> 1000).
type Measure struct {
	ID               int     `json:"id" gorm:"primaryKey" example:"1"`
	Name             string  `json:"name" gorm:"type:varchar(100);not null" example:"Kilogram"`
	ShortName        string  `json:"short_name" gorm:"type:varchar(20);not null" example:"kg"`
	Symbol           string  `json:"symbol,omitempty" gorm:"type:varchar(20)" example:"kg"`
	Family           string  `json:"family" gorm:"type:varchar(20);not null;index" example:"WEIGHT"`
	BaseUnitRef      string  `json:"base_unit_ref" gorm:"type:varchar(20);not null" example:"kg"`
	ConversionFactor float64 `json:"conversion_factor" gorm:"type:decimal(18,6);not null" example:"1"`
}

// TableName overrides the GORM table name
func (Measure) TableName() string {
	return "measures"
}

// ValidFamily reports whether f is one of the known measure families.
func ValidFamily(f string) bool {
	switch f {
	case FamilyWeight, FamilyVolume, FamilyLength, FamilyArea, FamilyCount, FamilyContainer:
		return true
	}
	return false
}
