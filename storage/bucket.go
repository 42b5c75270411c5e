package storage

import (
	"chequeai/db"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
)

type Bucket struct {
	ID          uint64 `gorm:"primaryKey"`
	CreatedAt   int
	UpdatedAt   int
	Name        string `gorm:"type:varchar(200)"` // S3 bucket name or a label for disk buckets
	StorageType StorageType
	Path        string `gorm:"type:varchar(500)"` // Path on a drive or a prefix in a S3 bucket
	Region      string `gorm:"type:varchar(50)"`
	Endpoint    string `gorm:"type:varchar(300)"` // S3 compatible endpoint, empty for AWS
	S3Key       string `gorm:"type:varchar(300)"`
	S3Secret    string `gorm:"type:varchar(300)"`
}

func (b *Bucket) IsS3() bool {
	return b.StorageType == StorageTypeS3
}

func (b *Bucket) Create() error {
	err := db.Instance.Create(b).Error
	if err != nil {
		return err
	}
	if b.StorageType == StorageTypeFile {
		// Pre-create location on disk
		return os.MkdirAll(b.Path, 0777)
	}
	return nil
}

// GetRemotePath prefixes path with the bucket's path (if any)
func (b *Bucket) GetRemotePath(path string) string {
	prefix := strings.Trim(b.Path, "/")
	if prefix == "" {
		return path
	}
	return prefix + "/" + path
}

func (b *Bucket) CreateSVC() (*s3.S3, error) {
	cfg := &aws.Config{
		Region: aws.String(b.Region),
	}
	if b.S3Key != "" {
		cfg.Credentials = credentials.NewStaticCredentials(b.S3Key, b.S3Secret, "")
	}
	if b.Endpoint != "" {
		cfg.Endpoint = aws.String(b.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}
