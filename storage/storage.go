package storage

import (
	"chequeai/config"
	"chequeai/db"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	cmap "github.com/orcaman/concurrent-map/v2"
	"gorm.io/gorm"
)

type StorageAPI interface {
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	Delete(path string) error
	GetTotalSpace() uint64
	GetFreeSpace() uint64
	GetBucket() *Bucket
}

var (
	ErrNoStorage = errors.New("no storage available")

	cachedStorage   = cmap.New[StorageAPI]()
	defaultBucketID uint64
)

// Init loads all buckets and makes sure the one described by the config exists.
// That bucket becomes the default one for new uploads.
func Init() {
	if err := db.Instance.AutoMigrate(&Bucket{}); err != nil {
		panic(err)
	}
	defaultBucket, err := ensureConfiguredBucket()
	if err != nil {
		panic(err)
	}
	var buckets []Bucket
	if err = db.Instance.Find(&buckets).Error; err != nil {
		panic(err)
	}
	log.Printf("Storage Buckets found: %d\n", len(buckets))
	cachedStorage.Clear()
	for i := range buckets {
		if err = Register(&buckets[i]); err != nil {
			log.Printf("Bucket %d skipped: %v", buckets[i].ID, err)
		}
	}
	defaultBucketID = defaultBucket.ID
}

func ensureConfiguredBucket() (bucket Bucket, err error) {
	wanted := Bucket{StorageType: StorageTypeFile, Name: "local", Path: config.UPLOAD_DIR}
	if config.S3_BUCKET != "" {
		wanted = Bucket{
			StorageType: StorageTypeS3,
			Name:        config.S3_BUCKET,
			Region:      config.S3_REGION,
			Endpoint:    config.S3_ENDPOINT,
			S3Key:       config.S3_KEY,
			S3Secret:    config.S3_SECRET,
		}
	}
	err = db.Instance.
		Where("storage_type = ? AND name = ? AND path = ?", wanted.StorageType, wanted.Name, wanted.Path).
		First(&bucket).Error
	if err == nil {
		// Credentials may have been rotated
		if bucket.S3Key != wanted.S3Key || bucket.S3Secret != wanted.S3Secret || bucket.Endpoint != wanted.Endpoint || bucket.Region != wanted.Region {
			bucket.S3Key, bucket.S3Secret, bucket.Endpoint, bucket.Region = wanted.S3Key, wanted.S3Secret, wanted.Endpoint, wanted.Region
			err = db.Instance.Save(&bucket).Error
		}
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	log.Printf("Creating storage bucket %q", wanted.Name)
	err = wanted.Create()
	return wanted, err
}

// Register creates the storage for a bucket and caches it
func Register(bucket *Bucket) error {
	storage, err := NewStorage(bucket)
	if err != nil {
		return err
	}
	cachedStorage.Set(bucketKey(bucket.ID), storage)
	return nil
}

func NewStorage(bucket *Bucket) (StorageAPI, error) {
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket), nil
	case StorageTypeS3:
		return NewS3Storage(bucket)
	}
	return nil, fmt.Errorf("storage type unavailable for Bucket %d", bucket.ID)
}

func StorageFrom(bucket *Bucket) StorageAPI {
	if storage, ok := cachedStorage.Get(bucketKey(bucket.ID)); ok {
		return storage
	}
	return nil
}

func GetDefaultStorage() (StorageAPI, error) {
	if storage, ok := cachedStorage.Get(bucketKey(defaultBucketID)); ok {
		return storage, nil
	}
	return nil, ErrNoStorage
}

func bucketKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
