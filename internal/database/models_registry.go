package database

import "moodfeed/internal/models"

// PersistentModels returns the schema-managed GORM models in dependency order.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Post{},
	}
}
