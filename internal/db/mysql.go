package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMySQL opens a MySQL connection and returns a GORM DB handle. The handle
// is passed explicitly to repositories; there is no package-level connection.
func NewMySQL(dsn string) (*gorm.DB, error) {
	// TranslateError turns driver duplicate-entry errors (MySQL 1062) into
	// gorm.ErrDuplicatedKey so services can map them to the error taxonomy.
	gormDB, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return gormDB, nil
}
