package handlers

import (
	"chequeai/models"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Message string `json:"message"`
}

var (
	// Predefined responses
	CheckNotFoundResponse = Response{"Check not found"}
	DBErrorResponse       = Response{"Database error"}
	BadRequestResponse    = Response{"Invalid request"}
	NoFileResponse        = Response{"No file uploaded"}
	NotImageResponse      = Response{"Only image files are allowed!"}
	FileTooLargeResponse  = Response{"File too large"}
	NoDataResponse        = Response{"Extracted data is required"}
)

// checkError answers with 404 for missing or foreign checks and 500 otherwise
func checkError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrCheckNotFound) {
		c.JSON(http.StatusNotFound, CheckNotFoundResponse)
		return
	}
	log.Printf("Database error: %v", err)
	c.JSON(http.StatusInternalServerError, DBErrorResponse)
}
