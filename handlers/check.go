package handlers

import (
	"bytes"
	"chequeai/checkinfo"
	"chequeai/config"
	"chequeai/export"
	"chequeai/gemini"
	"chequeai/metrics"
	"chequeai/models"
	"chequeai/processing"
	"chequeai/storage"
	"chequeai/utils"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Extractor reads the uploaded cheques, set on start up
var Extractor processing.Extractor

// CheckView is a stored check together with its reconciled and display values
type CheckView struct {
	models.Check
	ExtractedInfo checkinfo.Info    `json:"extractedInfo"`
	Display       checkinfo.Display `json:"display"`
}

type CheckResponse struct {
	Message string    `json:"message"`
	Check   CheckView `json:"check"`
}

type ExtractedDataRequest struct {
	ExtractedData checkinfo.Fields `json:"extractedData"`
}

func newCheckView(check models.Check) CheckView {
	info := check.Info()
	return CheckView{
		Check:         check,
		ExtractedInfo: info,
		Display:       checkinfo.Format(info),
	}
}

func loadCheck(c *gin.Context, user *models.User) (check models.Check, ok bool) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		c.JSON(http.StatusNotFound, CheckNotFoundResponse)
		return
	}
	check, err := models.CheckGet(id, user.ID)
	if err != nil {
		checkError(c, err)
		return
	}
	return check, true
}

func CheckList(c *gin.Context, user *models.User) {
	checks, err := models.CheckList(user.ID)
	if err != nil {
		checkError(c, err)
		return
	}
	views := make([]CheckView, 0, len(checks))
	for i := range checks {
		views = append(views, newCheckView(checks[i]))
	}
	c.JSON(http.StatusOK, gin.H{"checks": views})
}

func CheckGet(c *gin.Context, user *models.User) {
	check, ok := loadCheck(c, user)
	if !ok {
		return
	}
	view := newCheckView(check)
	c.JSON(http.StatusOK, gin.H{
		"check":         view.Check,
		"extractedInfo": view.ExtractedInfo,
		"display":       view.Display,
	})
}

func CheckImage(c *gin.Context, user *models.User) {
	check, ok := loadCheck(c, user)
	if !ok {
		return
	}
	path := check.ImageFilename
	if c.Query("thumb") == "1" && check.ThumbFilename != "" {
		path = check.ThumbFilename
	}
	if check.BucketID == nil || path == "" {
		c.JSON(http.StatusNotFound, Response{"Image not found"})
		return
	}
	storage := storage.StorageFrom(&check.Bucket)
	if storage == nil {
		log.Printf("CheckImage: storage is nil for check %d", check.ID)
		c.JSON(http.StatusNotFound, Response{"Image not found"})
		return
	}
	storage.Serve(path, c.Request, c.Writer)
}

func CheckExtract(c *gin.Context, user *models.User) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, NoFileResponse)
		return
	}
	if header.Size > config.MAX_FILE_SIZE {
		metrics.Default.RecordUploadRejection("too_large")
		c.JSON(http.StatusBadRequest, FileTooLargeResponse)
		return
	}
	file, err := header.Open()
	if err != nil {
		log.Printf("CheckExtract open upload error: %v", err)
		c.JSON(http.StatusBadRequest, NoFileResponse)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, config.MAX_FILE_SIZE+1))
	if err != nil {
		log.Printf("CheckExtract read upload error: %v", err)
		c.JSON(http.StatusBadRequest, NoFileResponse)
		return
	}

	check, err := processing.ExtractCheck(c.Request.Context(), Extractor, user.ID, header.Filename, data)
	var extractionErr *processing.ExtractionError
	switch {
	case errors.Is(err, processing.ErrNoFile):
		c.JSON(http.StatusBadRequest, NoFileResponse)
		return
	case errors.Is(err, processing.ErrNotAnImage):
		c.JSON(http.StatusBadRequest, NotImageResponse)
		return
	case errors.Is(err, processing.ErrFileTooBig):
		c.JSON(http.StatusBadRequest, FileTooLargeResponse)
		return
	case errors.As(err, &extractionErr):
		log.Printf("Error processing image for user %d: %v", user.ID, extractionErr.Err)
		response := gin.H{"message": gemini.UserMessage(extractionErr.Err)}
		if config.DEBUG_MODE {
			response["details"] = extractionErr.Err.Error()
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	case err != nil:
		log.Printf("CheckExtract error for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, Response{"Error saving check data"})
		return
	}
	c.JSON(http.StatusCreated, CheckResponse{"Check information extracted successfully using Gemini AI!", newCheckView(check)})
}

func CheckInsertSample(c *gin.Context, user *models.User) {
	check := models.SampleCheck(user.ID)
	if err := models.CheckCreate(&check); err != nil {
		log.Printf("CheckInsertSample error: %v", err)
		c.JSON(http.StatusInternalServerError, Response{"Error inserting sample data"})
		return
	}
	c.JSON(http.StatusCreated, CheckResponse{"Sample check data inserted successfully!", newCheckView(check)})
}

func checkSaveExtracted(c *gin.Context, user *models.User, message string) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		c.JSON(http.StatusNotFound, CheckNotFoundResponse)
		return
	}
	req := ExtractedDataRequest{}
	if err := c.ShouldBindJSON(&req); err != nil || req.ExtractedData == nil {
		c.JSON(http.StatusBadRequest, NoDataResponse)
		return
	}
	check, err := models.CheckUpdateExtracted(id, user.ID, req.ExtractedData)
	if err != nil {
		checkError(c, err)
		return
	}
	c.JSON(http.StatusOK, CheckResponse{message, newCheckView(check)})
}

func CheckUpdateExtracted(c *gin.Context, user *models.User) {
	checkSaveExtracted(c, user, "Extracted data updated successfully!")
}

func CheckInsertExtracted(c *gin.Context, user *models.User) {
	checkSaveExtracted(c, user, "Extracted data inserted successfully!")
}

func exportDocument(check *models.Check) *export.Document {
	return &export.Document{
		Info:          check.Info(),
		CreatedAt:     check.CreatedAt,
		ImageFilename: check.ImageFilename,
		ExtractedText: check.ExtractedText,
	}
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func CheckExportCSV(c *gin.Context, user *models.User) {
	check, ok := loadCheck(c, user)
	if !ok {
		return
	}
	doc := exportDocument(&check)
	buf := bytes.Buffer{}
	if err := export.WriteCSV(&buf, doc); err != nil {
		log.Printf("CSV export error, check %d: %v", check.ID, err)
		c.JSON(http.StatusInternalServerError, Response{"Error generating CSV"})
		return
	}
	metrics.Default.RecordExport("csv")
	attachment(c, export.CSVFilename(doc), "text/csv; charset=utf-8", buf.Bytes())
}

func CheckExportPDF(c *gin.Context, user *models.User) {
	check, ok := loadCheck(c, user)
	if !ok {
		return
	}
	doc := exportDocument(&check)
	buf := bytes.Buffer{}
	if err := export.WritePDF(&buf, doc); err != nil {
		log.Printf("PDF export error, check %d: %v", check.ID, err)
		c.JSON(http.StatusInternalServerError, Response{"Error generating PDF"})
		return
	}
	metrics.Default.RecordExport("pdf")
	attachment(c, export.PDFFilename(doc), "application/pdf", buf.Bytes())
}

func CheckDelete(c *gin.Context, user *models.User) {
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		c.JSON(http.StatusNotFound, CheckNotFoundResponse)
		return
	}
	if err := models.CheckDelete(id, user.ID); err != nil {
		checkError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{"Check deleted successfully"})
}
