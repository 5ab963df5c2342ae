package openbeta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/boulderagent/orm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubNode is the wire shape the fake GraphQL endpoint serves per uuid.
type stubNode struct {
	AreaName string           `json:"areaName"`
	Metadata map[string]any   `json:"metadata"`
	Children []map[string]any `json:"children"`
	Climbs   []map[string]any `json:"climbs"`
}

func newStubServer(t *testing.T, nodes map[string]stubNode) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		id, _ := body.Variables["id"].(string)

		resp := map[string]any{"data": map[string]any{"area": nil}}
		if node, ok := nodes[id]; ok {
			resp["data"].(map[string]any)["area"] = node
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, orm.Migrate(db))
	return db
}

func climb(uuid, name string, vscale any, bouldering bool) map[string]any {
	return map[string]any{
		"uuid":    uuid,
		"name":    name,
		"content": map[string]any{"description": ""},
		"grades":  map[string]any{"vscale": vscale},
		"type":    map[string]any{"bouldering": bouldering},
	}
}

func testNodes() map[string]stubNode {
	return map[string]stubNode{
		"root-1": {
			AreaName: "Powerlinez",
			Metadata: map[string]any{"lat": 41.24, "lng": -74.17},
			Children: []map[string]any{{"uuid": "child-1", "areaName": "North Side"}},
			Climbs: []map[string]any{
				climb("c-1", "Static Line", 5.0, true),
				climb("c-2", "Sporty Thing", 7.0, false),
			},
		},
		"child-1": {
			// No GPS of its own; climbs inherit the parent's.
			AreaName: "North Side",
			Metadata: map[string]any{"lat": nil, "lng": nil},
			Climbs: []map[string]any{
				climb("c-3", "Mystery Problem", nil, true),
				climb("c-4", "String Grade", "10", true),
			},
		},
	}
}

func TestIngest_WalksHierarchy(t *testing.T) {
	client := newStubServer(t, testNodes())
	db := newTestDB(t)

	walker := NewWalker(client, db)
	require.NoError(t, walker.Ingest(context.Background(), "root-1", nil))

	var boulders []orm.Boulder
	require.NoError(t, db.Order("uuid").Find(&boulders).Error)
	require.Len(t, boulders, 3)

	// Non-bouldering climb c-2 is filtered out.
	assert.Equal(t, "c-1", boulders[0].UUID)
	assert.Equal(t, "c-3", boulders[1].UUID)
	assert.Equal(t, "c-4", boulders[2].UUID)

	// Root-level climb: only the outermost label is set.
	root := boulders[0]
	require.NotNil(t, root.Area)
	assert.Equal(t, "Powerlinez", *root.Area)
	assert.Nil(t, root.SubArea)
	assert.Equal(t, "V5", root.Grade)

	// Child-level climb: two labels deep.
	nested := boulders[1]
	require.NotNil(t, nested.Area)
	require.NotNil(t, nested.SubArea)
	assert.Equal(t, "Powerlinez", *nested.Area)
	assert.Equal(t, "North Side", *nested.SubArea)
	assert.Nil(t, nested.Crag)
}

func TestIngest_GradeTokens(t *testing.T) {
	client := newStubServer(t, testNodes())
	db := newTestDB(t)

	walker := NewWalker(client, db)
	require.NoError(t, walker.Ingest(context.Background(), "root-1", nil))

	var ungraded orm.Boulder
	require.NoError(t, db.First(&ungraded, "uuid = ?", "c-3").Error)
	assert.Equal(t, "V?", ungraded.Grade)

	var stringGrade orm.Boulder
	require.NoError(t, db.First(&stringGrade, "uuid = ?", "c-4").Error)
	assert.Equal(t, "V10", stringGrade.Grade)
}

func TestIngest_CoordinateInheritance(t *testing.T) {
	client := newStubServer(t, testNodes())
	db := newTestDB(t)

	walker := NewWalker(client, db)
	require.NoError(t, walker.Ingest(context.Background(), "root-1", nil))

	// The child area has no GPS, so its climbs carry the root's.
	var nested orm.Boulder
	require.NoError(t, db.First(&nested, "uuid = ?", "c-3").Error)
	require.NotNil(t, nested.Lat)
	require.NotNil(t, nested.Lng)
	assert.InDelta(t, 41.24, *nested.Lat, 1e-9)
	assert.InDelta(t, -74.17, *nested.Lng, 1e-9)

	// The area row itself stays coordinate-less; inheritance is for
	// climbs only.
	var childArea orm.Area
	require.NoError(t, db.First(&childArea, "uuid = ?", "child-1").Error)
	assert.Nil(t, childArea.Lat)
	assert.Nil(t, childArea.Lng)
}

func TestIngest_ParentNameFromPrefix(t *testing.T) {
	client := newStubServer(t, testNodes())
	db := newTestDB(t)

	walker := NewWalker(client, db)
	require.NoError(t, walker.Ingest(context.Background(), "root-1", []string{"Gunks"}))

	var root orm.Area
	require.NoError(t, db.First(&root, "uuid = ?", "root-1").Error)
	require.NotNil(t, root.ParentName)
	assert.Equal(t, "Gunks", *root.ParentName)

	var child orm.Area
	require.NoError(t, db.First(&child, "uuid = ?", "child-1").Error)
	require.NotNil(t, child.ParentName)
	assert.Equal(t, "Powerlinez", *child.ParentName)
}

func TestIngest_RerunIsNoOp(t *testing.T) {
	nodes := testNodes()
	client := newStubServer(t, nodes)
	db := newTestDB(t)

	walker := NewWalker(client, db)
	require.NoError(t, walker.Ingest(context.Background(), "root-1", nil))

	// Upstream renames a climb; the second run must not clobber the
	// stored row.
	nodes["root-1"].Climbs[0]["name"] = "Renamed Problem"
	require.NoError(t, walker.Ingest(context.Background(), "root-1", nil))

	var count int64
	require.NoError(t, db.Model(&orm.Boulder{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	var b orm.Boulder
	require.NoError(t, db.First(&b, "uuid = ?", "c-1").Error)
	assert.Equal(t, "Static Line", b.Name)
}

func TestIngest_MissingAreaSkipped(t *testing.T) {
	client := newStubServer(t, map[string]stubNode{})
	db := newTestDB(t)

	walker := NewWalker(client, db)
	require.NoError(t, walker.Ingest(context.Background(), "does-not-exist", nil))

	var count int64
	require.NoError(t, db.Model(&orm.Area{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
