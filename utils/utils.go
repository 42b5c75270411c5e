package utils

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strconv"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
)

func RandSalt(saltSize int) string {
	b := make([]byte, saltSize)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}

// ParseID reads a positive record id from a URL parameter
func ParseID(in string) (uint64, bool) {
	id, err := strconv.ParseUint(in, 10, 64)
	return id, err == nil && id > 0
}

type ImageThumbConverted struct {
	ThumbSize int64
	NewX      uint16
	NewY      uint16
	OldX      uint16
	OldY      uint16
}

// CreateThumb decodes an image and writes a JPEG of at most size x size pixels
func CreateThumb(size uint, reader io.Reader, writer io.Writer) (result ImageThumbConverted, err error) {
	image, _, err := image.Decode(reader)
	if err != nil {
		return result, err
	}
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, image, resize.Lanczos3)
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90}); err != nil {
		return
	}
	imageRect := newImage.Bounds().Size()
	result.NewX = uint16(imageRect.X)
	result.NewY = uint16(imageRect.Y)

	imageRect = image.Bounds().Size()
	result.OldX = uint16(imageRect.X)
	result.OldY = uint16(imageRect.Y)

	result.ThumbSize, err = io.Copy(writer, &newBuf)
	return
}

// FitImage returns the image re-encoded as JPEG when either side is larger than maxSize.
// Smaller images, and images that cannot be decoded, are returned unchanged with resized=false.
func FitImage(maxSize uint, data []byte) (out []byte, resized bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || (uint(cfg.Width) <= maxSize && uint(cfg.Height) <= maxSize) {
		return data, false
	}
	var buf bytes.Buffer
	if _, err = CreateThumb(maxSize, bytes.NewReader(data), &buf); err != nil {
		return data, false
	}
	return buf.Bytes(), true
}
