package models

import (
	"chequeai/db"
	"log"
)

func Init() {
	if err := db.Instance.AutoMigrate(&User{}, &Check{}); err != nil {
		log.Printf("Auto-migrate error: %v", err)
	}
}
