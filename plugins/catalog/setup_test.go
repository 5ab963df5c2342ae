package catalog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/va6996/boulderagent/orm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, orm.Migrate(db))
	return db
}

func ptr[T any](v T) *T { return &v }

func seedArea(t *testing.T, db *gorm.DB, uuid, name string, lat, lng *float64, parent *string) {
	t.Helper()
	require.NoError(t, orm.InsertArea(db, &orm.Area{
		UUID: uuid, Name: name, Lat: lat, Lng: lng, ParentName: parent,
	}))
}

func seedBoulder(t *testing.T, db *gorm.DB, uuid, area, subArea, name string, lat, lng *float64) {
	t.Helper()
	require.NoError(t, orm.InsertBoulder(db, &orm.Boulder{
		UUID: uuid, Area: ptr(area), SubArea: ptr(subArea),
		Name: name, Grade: "V4", Lat: lat, Lng: lng,
	}))
}
