package models

import (
	"chequeai/checkinfo"
	"chequeai/db"
	"chequeai/storage"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Check is one extraction attempt of a bank cheque. The structured columns and the JSON
// held in ExtractedText are written independently and may disagree; use Info() to read
// the values that should be shown.
type Check struct {
	ID                uint64         `gorm:"primaryKey" json:"id"`
	UserID            uint64         `gorm:"not null;index:user_check_created,priority:1" json:"user_id"`
	User              User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	MicrCode          string         `gorm:"type:text" json:"micr_code"`
	ChequeDate        string         `gorm:"type:text" json:"cheque_date"`
	AmountNumber      string         `gorm:"type:text" json:"amount_number"`
	AmountWords       string         `gorm:"type:text" json:"amount_words"`
	CurrencyName      string         `gorm:"type:text" json:"currency_name"`
	PayeeName         string         `gorm:"type:text" json:"payee_name"`
	AccountNumber     string         `gorm:"type:text" json:"account_number"`
	AntiFraudFeatures string         `gorm:"type:text" json:"anti_fraud_features"`
	ImageFilename     string         `gorm:"type:varchar(300)" json:"image_filename"`
	ThumbFilename     string         `gorm:"type:varchar(300)" json:"-"`
	BucketID          *uint64        `json:"-"`
	Bucket            storage.Bucket `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	ExtractedText     string         `gorm:"type:text" json:"extracted_text"`
	CreatedAt         time.Time      `gorm:"index:user_check_created,priority:2" json:"created_at"`
}

func (Check) TableName() string {
	return "bank_checks"
}

var ErrCheckNotFound = errors.New("check not found")

func (c *Check) Record() checkinfo.Record {
	return checkinfo.Record{
		MicrCode:          c.MicrCode,
		ChequeDate:        c.ChequeDate,
		AmountNumber:      c.AmountNumber,
		AmountWords:       c.AmountWords,
		CurrencyName:      c.CurrencyName,
		PayeeName:         c.PayeeName,
		AccountNumber:     c.AccountNumber,
		AntiFraudFeatures: c.AntiFraudFeatures,
		ExtractedText:     c.ExtractedText,
	}
}

// Info returns the reconciled field values
func (c *Check) Info() checkinfo.Info {
	return checkinfo.Extract(c.Record())
}

// SetFields copies the structured columns from recovered JSON. Currency is not part of
// the extracted fields.
func (c *Check) SetFields(fields checkinfo.Fields) {
	c.MicrCode = fields.String(checkinfo.KeyMicrCode)
	c.ChequeDate = fields.String(checkinfo.KeyChequeDate)
	c.AmountNumber = fields.String(checkinfo.KeyAmountNumber)
	c.AmountWords = fields.String(checkinfo.KeyAmountWords)
	c.PayeeName = fields.String(checkinfo.KeyPayeeName)
	c.AccountNumber = fields.String(checkinfo.KeyAccountNumber)
	c.AntiFraudFeatures = fields.String(checkinfo.KeyAntiFraudFeatures)
}

func CheckCreate(c *Check) error {
	return db.Instance.Omit(clause.Associations).Create(c).Error
}

// CheckGet only finds checks owned by ownerID. Foreign checks look exactly like missing ones.
func CheckGet(id, ownerID uint64) (c Check, err error) {
	err = db.Instance.Preload("Bucket").First(&c, "id = ? AND user_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrCheckNotFound
	}
	return
}

// CheckList returns the checks of ownerID, newest first
func CheckList(ownerID uint64) (checks []Check, err error) {
	checks = []Check{}
	err = db.Instance.Where("user_id = ?", ownerID).Order("created_at DESC, id DESC").Find(&checks).Error
	return
}

// CheckUpdateExtracted rewrites the structured columns from data and stores data itself as
// the extracted text
func CheckUpdateExtracted(id, ownerID uint64, data checkinfo.Fields) (Check, error) {
	c, err := CheckGet(id, ownerID)
	if err != nil {
		return c, err
	}
	text, err := json.Marshal(data)
	if err != nil {
		return c, err
	}
	c.SetFields(data)
	c.ExtractedText = string(text)
	err = db.Instance.Model(&Check{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(map[string]any{
			checkinfo.KeyMicrCode:          c.MicrCode,
			checkinfo.KeyChequeDate:        c.ChequeDate,
			checkinfo.KeyAmountNumber:      c.AmountNumber,
			checkinfo.KeyAmountWords:       c.AmountWords,
			checkinfo.KeyPayeeName:         c.PayeeName,
			checkinfo.KeyAccountNumber:     c.AccountNumber,
			checkinfo.KeyAntiFraudFeatures: c.AntiFraudFeatures,
			"extracted_text":               c.ExtractedText,
		}).Error
	return c, err
}

// CheckDelete removes the check and then tries to remove its image files
func CheckDelete(id, ownerID uint64) error {
	c, err := CheckGet(id, ownerID)
	if err != nil {
		return err
	}
	result := db.Instance.Where("id = ? AND user_id = ?", id, ownerID).Delete(&Check{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCheckNotFound
	}
	c.deleteFiles()
	return nil
}

func (c *Check) deleteFiles() {
	if c.BucketID == nil {
		return
	}
	storage := storage.StorageFrom(&c.Bucket)
	if storage == nil {
		log.Printf("Check: %d, error: storage is nil", c.ID)
		return
	}
	for _, path := range []string{c.ImageFilename, c.ThumbFilename} {
		if path == "" {
			continue
		}
		if err := storage.Delete(path); err != nil {
			log.Printf("Check: %d, delete %s error: %v", c.ID, path, err)
		}
	}
}

func (c *Check) SetThumb(path string) error {
	c.ThumbFilename = path
	return db.Instance.Model(c).UpdateColumn("thumb_filename", path).Error
}

// SampleCheck is the cheque used to try the application without uploading anything
func SampleCheck(ownerID uint64) Check {
	fields := checkinfo.Fields{
		checkinfo.KeyMicrCode:          "056111 063-978⑆ 1007928",
		checkinfo.KeyChequeDate:        "07 November 2017",
		checkinfo.KeyAmountNumber:      "8.01",
		checkinfo.KeyAmountWords:       "EIGHT DOLLARS AND ONE CENT",
		checkinfo.KeyPayeeName:         "JULIUS EVENTS COLLEGE PTY LTD",
		checkinfo.KeyAccountNumber:     "",
		checkinfo.KeyAntiFraudFeatures: "Watermark (likely, based on the background pattern), microprinting (possibly, but not clearly visible in the provided image), 'Not Negotiable' printed on the cheque.",
	}
	text, _ := json.Marshal(fields)
	c := Check{
		UserID:        ownerID,
		CurrencyName:  checkinfo.DefaultCurrency,
		ImageFilename: "sample-check.jpg",
		ExtractedText: string(text),
	}
	c.SetFields(fields)
	return c
}
