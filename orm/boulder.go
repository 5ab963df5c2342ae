package orm

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UngradedSentinel is stored when the upstream record carries no
// V-scale grade.
const UngradedSentinel = "V?"

// Boulder is a leaf climb record. The four hierarchy labels run outer
// to inner (area, sub_area, crag, rock) and trail off into NULL when
// the upstream path is shallower than four levels.
type Boulder struct {
	UUID        string   `gorm:"primaryKey;column:uuid"`
	Area        *string  `gorm:"column:area"`
	SubArea     *string  `gorm:"column:sub_area"`
	Crag        *string  `gorm:"column:crag"`
	Rock        *string  `gorm:"column:rock"`
	Name        string   `gorm:"column:name"`
	Grade       string   `gorm:"column:grade"`
	Description *string  `gorm:"column:description"`
	Lat         *float64 `gorm:"column:lat"`
	Lng         *float64 `gorm:"column:lng"`
}

// TableName maps to the boulders table
func (Boulder) TableName() string { return "boulders" }

// InsertBoulder inserts a climb keyed by uuid with insert-if-absent
// semantics; a duplicate uuid leaves the stored row untouched.
func InsertBoulder(db *gorm.DB, b *Boulder) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
}

// SearchBoulders finds climbs whose name contains the given text,
// case-insensitively. A non-empty parentHint requires the area or
// sub_area label to contain the hint.
func SearchBoulders(db *gorm.DB, name, parentHint string) ([]Boulder, error) {
	q := db.Model(&Boulder{}).
		Where("LOWER(name) LIKE ?", contains(name))
	if parentHint != "" {
		hint := contains(parentHint)
		q = q.Where("LOWER(area) LIKE ? OR LOWER(sub_area) LIKE ?", hint, hint)
	}

	var boulders []Boulder
	if err := q.Order("name").Find(&boulders).Error; err != nil {
		return nil, err
	}
	return boulders, nil
}
