package database

import "lumen/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Image{},
		&models.Like{},
	}
}
