package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("technicians")
		collection.Fields.Add(
			&core.TextField{Name: "tech_id", Required: true},
			&core.TextField{Name: "name", Required: true},
			&core.TextField{Name: "phone"},
			&core.TextField{Name: "pin_hash"},
			&core.NumberField{Name: "points"},
		)
		collection.AddIndex("idx_technicians_tech_id", true, "tech_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("technicians")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
