package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("app_settings")
		collection.Fields.Add(
			&core.TextField{Name: "key", Required: true},
			&core.TextField{Name: "value"},
		)
		collection.AddIndex("idx_app_settings_key", true, "key", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("app_settings")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
