package db

import (
	"chequeai/config"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Instance *gorm.DB

// Init opens MySQL if config.MYSQL_DSN is set, otherwise the SQLite file in config.SQLITE_FILE
func Init() {
	var dialector gorm.Dialector
	if config.MYSQL_DSN != "" {
		log.Println("Using MySQL database")
		dialector = mysql.Open(config.MYSQL_DSN)
	} else {
		log.Printf("Using SQLite database: %s", config.SQLITE_FILE)
		dialector = sqlite.Open(config.SQLITE_FILE)
	}
	db, err := Open(dialector)
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}

func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, err
	}
	if dialector.Name() == "sqlite" {
		// SQLite allows a single writer; an in-memory database also only lives on one connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Ping runs a trivial query against the database
func Ping() error {
	result := 0
	return Instance.Raw("SELECT 1").Scan(&result).Error
}
