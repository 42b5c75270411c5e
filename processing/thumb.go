package processing

import (
	"bytes"
	"chequeai/config"
	"chequeai/models"
	"chequeai/storage"
	"chequeai/utils"
	"log"
	"path"
	"strings"
)

type thumb struct{}

func (t *thumb) getName() string {
	return "thumb"
}

func (t *thumb) shouldHandle(check *models.Check) bool {
	return check.ThumbFilename == ""
}

func (t *thumb) process(check *models.Check, storage storage.StorageAPI) int {
	original := bytes.Buffer{}
	if _, err := storage.Load(check.ImageFilename, &original); err != nil {
		log.Printf("Cannot load image for check %d (%s): %v", check.ID, check.ImageFilename, err)
		return Failed
	}
	thumbBuf := bytes.Buffer{}
	if _, err := utils.CreateThumb(uint(config.THUMB_SIZE), &original, &thumbBuf); err != nil {
		log.Printf("Error creating thumbnail for check %d (%s): %v", check.ID, check.ImageFilename, err)
		return Failed
	}
	thumbPath := ThumbPath(check.ImageFilename)
	if _, err := storage.Save(thumbPath, &thumbBuf); err != nil {
		log.Printf("Error saving thumbnail for check %d (%s): %v", check.ID, thumbPath, err)
		return FailedStorage
	}
	if err := check.SetThumb(thumbPath); err != nil {
		log.Printf("Error saving check %d: %v", check.ID, err)
		_ = storage.Delete(thumbPath)
		return Failed
	}
	return Done
}

// ThumbPath is where the thumbnail of imagePath is stored, e.g. checks/1/abc_thumb.jpg
func ThumbPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, path.Ext(imagePath)) + "_thumb.jpg"
}
