package dao

import "gorm.io/gorm"

// InitTables migrates the schema. Foreign keys from items to users and from
// change logs to items and users are created with ON DELETE CASCADE, so
// removing a user or an item removes everything hanging off it.
func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Item{},
		&ChangeLog{},
	)
}
