package openbeta

import (
	"context"
	"strings"

	"github.com/va6996/boulderagent/log"
	"github.com/va6996/boulderagent/orm"
	"gorm.io/gorm"
)

// Walker recursively ingests an upstream hierarchy subtree into the
// catalog. Rows are keyed by uuid with insert-if-absent semantics, so
// re-running a seed is a no-op.
type Walker struct {
	client *Client
	db     *gorm.DB
}

// NewWalker creates a walker over the given client and catalog
func NewWalker(client *Client, db *gorm.DB) *Walker {
	return &Walker{client: client, db: db}
}

// Ingest walks the subtree rooted at rootID. prefix holds the ancestor
// labels above the root (e.g. ["Gunks"] when seeding a Gunks sector);
// the last label becomes the root's parent area name.
func (w *Walker) Ingest(ctx context.Context, rootID string, prefix []string) error {
	parentName := ""
	if len(prefix) > 0 {
		parentName = prefix[len(prefix)-1]
	}
	return w.walk(ctx, rootID, parentName, prefix, nil, nil)
}

func (w *Walker) walk(ctx context.Context, id, parentName string, levels []string, pLat, pLng *float64) error {
	node, err := w.client.GetArea(ctx, id)
	if err != nil {
		return err
	}
	if node == nil {
		log.Warnf(ctx, "No data found for area %s, skipping", id)
		return nil
	}

	// Use this level's GPS, or fall back to the nearest ancestor's.
	lat, lng := node.Metadata.Lat, node.Metadata.Lng
	if lat == nil || lng == nil {
		lat, lng = pLat, pLng
	}

	area := &orm.Area{
		UUID: id,
		Name: node.AreaName,
		Lat:  node.Metadata.Lat,
		Lng:  node.Metadata.Lng,
	}
	if parentName != "" {
		area.ParentName = &parentName
	}
	if err := orm.InsertArea(w.db, area); err != nil {
		return err
	}

	path := append(append([]string{}, levels...), node.AreaName)
	for _, climb := range node.Climbs {
		if !climb.Type.Bouldering {
			continue
		}
		b := &orm.Boulder{
			UUID:    climb.UUID,
			Area:    label(path, 0),
			SubArea: label(path, 1),
			Crag:    label(path, 2),
			Rock:    label(path, 3),
			Name:    climb.Name,
			Grade:   climb.GradeToken(),
			Lat:     lat,
			Lng:     lng,
		}
		if desc := climb.Content.Description; desc != "" {
			b.Description = &desc
		}
		if err := orm.InsertBoulder(w.db, b); err != nil {
			return err
		}
	}

	log.Infof(ctx, "Processed: %s (%d climbs)", strings.Join(path, " > "), len(node.Climbs))

	for _, child := range node.Children {
		if err := w.walk(ctx, child.UUID, node.AreaName, path, lat, lng); err != nil {
			return err
		}
	}
	return nil
}

// label maps the walk path onto the four outer-to-inner hierarchy
// columns; levels past the path depth stay NULL.
func label(path []string, idx int) *string {
	if idx >= len(path) {
		return nil
	}
	return &path[idx]
}
