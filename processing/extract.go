package processing

import (
	"bytes"
	"chequeai/checkinfo"
	"chequeai/config"
	"chequeai/metrics"
	"chequeai/models"
	"chequeai/storage"
	"chequeai/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Extractor reads a cheque image and answers with (hopefully) JSON text
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (string, error)
}

var (
	ErrNoFile     = errors.New("no file uploaded")
	ErrFileTooBig = errors.New("file too large")
	ErrNotAnImage = errors.New("only image files are allowed")

	allowedExt       = regexp.MustCompile(`(?i)^\.(jpeg|jpg|png|gif|bmp)$`)
	allowedMimeTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp"}
)

// ExtractionError is returned when the AI service failed. The stored image is gone by then.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// PrepareImage validates an uploaded file and returns its detected mime type
func PrepareImage(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}
	if int64(len(data)) > config.MAX_FILE_SIZE {
		metrics.Default.RecordUploadRejection("too_large")
		return "", ErrFileTooBig
	}
	mtype := mimetype.Detect(data)
	if !allowedExt.MatchString(filepath.Ext(filename)) || !isAllowedMime(mtype) {
		metrics.Default.RecordUploadRejection("not_image")
		return "", ErrNotAnImage
	}
	return mtype.String(), nil
}

func isAllowedMime(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedMimeTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

// ImagePath is where an uploaded image of ownerID is stored
func ImagePath(ownerID uint64, filename string) string {
	return "checks/" + strconv.FormatUint(ownerID, 10) + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

// ExtractCheck stores the uploaded image, asks the extractor to read it and creates the check.
// The structured columns come from the answer when it contains a JSON object, the answer
// itself is kept as the extracted text.
func ExtractCheck(ctx context.Context, extractor Extractor, ownerID uint64, filename string, data []byte) (check models.Check, err error) {
	mimeType, err := PrepareImage(filename, data)
	if err != nil {
		return
	}
	storage, err := storage.GetDefaultStorage()
	if err != nil {
		return
	}
	imagePath := ImagePath(ownerID, filename)
	if _, err = storage.Save(imagePath, bytes.NewReader(data)); err != nil {
		return check, fmt.Errorf("saving image: %w", err)
	}

	image := data
	if resized, ok := utils.FitImage(uint(config.IMAGE_MAX_SIZE), data); ok {
		image, mimeType = resized, "image/jpeg"
	}
	start := time.Now()
	text, err := extractor.Extract(ctx, image, mimeType)
	if err != nil {
		metrics.Default.RecordExtraction(metrics.StatusError, time.Since(start).Seconds())
		if delErr := storage.Delete(imagePath); delErr != nil {
			log.Printf("Cannot delete %s after failed extraction: %v", imagePath, delErr)
		}
		return check, &ExtractionError{Err: err}
	}
	metrics.Default.RecordExtraction(metrics.StatusSuccess, time.Since(start).Seconds())

	bucketID := storage.GetBucket().ID
	check = models.Check{
		UserID:        ownerID,
		CurrencyName:  checkinfo.DefaultCurrency,
		ImageFilename: imagePath,
		BucketID:      &bucketID,
		ExtractedText: text,
	}
	if fields, ok := checkinfo.ParseExtracted(text); ok {
		check.SetFields(fields)
	} else {
		log.Printf("Check extraction for user %d returned no JSON object", ownerID)
	}
	if err = models.CheckCreate(&check); err != nil {
		if delErr := storage.Delete(imagePath); delErr != nil {
			log.Printf("Cannot delete %s: %v", imagePath, delErr)
		}
		return check, err
	}
	return check, nil
}
