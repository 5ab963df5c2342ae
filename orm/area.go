package orm

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Area is a named climbing region. Coordinates are nullable; an area
// without its own GPS inherits from its ancestors at ingestion time.
// Parent linkage is by name, mirroring the upstream hierarchy export.
type Area struct {
	UUID       string   `gorm:"primaryKey;column:uuid"`
	Name       string   `gorm:"column:name"`
	Lat        *float64 `gorm:"column:lat"`
	Lng        *float64 `gorm:"column:lng"`
	ParentName *string  `gorm:"column:parent_name"`
}

// TableName maps to the areas table
func (Area) TableName() string { return "areas" }

// InsertArea inserts an area keyed by uuid. Re-ingesting an existing
// uuid is a no-op: the original row is never overwritten.
func InsertArea(db *gorm.DB, a *Area) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(a).Error
}

// SearchAreas finds coordinate-bearing areas whose name contains the
// given text, case-insensitively. A non-empty parentHint additionally
// requires the parent area name to contain the hint.
func SearchAreas(db *gorm.DB, name, parentHint string) ([]Area, error) {
	q := db.Model(&Area{}).
		Where("LOWER(name) LIKE ?", contains(name)).
		Where("lat IS NOT NULL AND lng IS NOT NULL")
	if parentHint != "" {
		q = q.Where("LOWER(parent_name) LIKE ?", contains(parentHint))
	}

	var areas []Area
	if err := q.Order("name").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func contains(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
