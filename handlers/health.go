package handlers

import (
	"chequeai/db"
	"chequeai/storage"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type StorageStatus struct {
	Bucket     string `json:"bucket"`
	TotalSpace uint64 `json:"totalSpace"`
	FreeSpace  uint64 `json:"freeSpace"`
}

func Health(c *gin.Context) {
	response := gin.H{
		"message":   "Bank Check AI Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    "healthy",
	}
	if s, err := storage.GetDefaultStorage(); err == nil {
		response["storage"] = StorageStatus{
			Bucket:     s.GetBucket().Name,
			TotalSpace: s.GetTotalSpace(),
			FreeSpace:  s.GetFreeSpace(),
		}
	}
	c.JSON(http.StatusOK, response)
}

func TestDB(c *gin.Context) {
	if err := db.Ping(); err != nil {
		log.Printf("Database test failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Database connection failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database connection successful", "test": gin.H{"test": 1}})
}
