// Package upload stores images sent with multipart requests and serves them
// back under the public /uploads/ prefix.
package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parishrama/diagnostic-api/internal/apperr"
)

const (
	// PublicPrefix is the URL prefix stored paths start with.
	PublicPrefix = "/uploads/"
	// MaxSize is the largest accepted image.
	MaxSize = 10 << 20
)

// Folders used by the resource routes.
const (
	DoctorsDir          = "doctors"
	HomeDir             = "home"
	LaboratoryDir       = "laboratory"
	PackageTestsDir     = "packageTests"
	PrecisionDir        = "precision"
	SampleCollectionDir = "sampleCollection"
)

// Uploader writes images for one route into root/dir.
type Uploader struct {
	root string
	dir  string
	log  *zap.Logger
	now  func() time.Time
}

func New(root, dir string, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{root: root, dir: dir, log: log, now: time.Now}
}

// ErrTooLarge rejects an image over MaxSize.
var ErrTooLarge = apperr.New(apperr.KindUnsupportedMedia, "Image must be 10MB or smaller")

// errNotImage rejects anything that is not a raster image.
var errNotImage = apperr.New(apperr.KindUnsupportedMedia, "Only image files are allowed")

// imageExtensions are the stored extensions per sniffed type. SVG is left
// out since it can carry script.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
	"image/avif": ".avif",
	"image/heic": ".heic",
	"image/heif": ".heif",
	"image/tiff": ".tiff",
}

// IsTooLarge reports whether err comes from a body cut off by
// http.MaxBytesReader.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || (err != nil && strings.Contains(err.Error(), "request body too large"))
}

// Accept stores the file sent in the multipart field and returns its public
// path. ok is false when the request carries no such file.
func (u *Uploader) Accept(c *gin.Context, field string) (stored string, ok bool, err error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", false, nil
		}
		if IsTooLarge(err) {
			return "", false, ErrTooLarge
		}
		return "", false, apperr.Wrap(apperr.KindValidation, "invalid multipart body", err)
	}

	ext, err := u.check(fh)
	if err != nil {
		return "", false, err
	}

	name := fmt.Sprintf("%s-%d-%s%s", field, u.now().UnixMilli(), uuid.NewString()[:8], ext)
	target := filepath.Join(u.root, u.dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", false, apperr.Wrap(apperr.KindInternal, "create upload directory", err)
	}
	if err := c.SaveUploadedFile(fh, filepath.Join(target, name)); err != nil {
		return "", false, apperr.Wrap(apperr.KindInternal, "store upload", err)
	}

	stored = PublicPrefix + path.Join(u.dir, name)
	u.log.Debug("image stored", zap.String("path", stored), zap.Int64("size", fh.Size))
	return stored, true, nil
}

// check enforces size and image type. Both the declared type and the
// sniffed content must be images. The stored extension follows the sniffed
// type; the client's file name is ignored.
func (u *Uploader) check(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxSize {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "", errNotImage
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "open upload", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "inspect upload", err)
	}
	ext, ok := imageExtension(mtype)
	if !ok {
		return "", errNotImage
	}
	return ext, nil
}

func imageExtension(m *mimetype.MIME) (string, bool) {
	for ; m != nil; m = m.Parent() {
		if ext, ok := imageExtensions[m.String()]; ok {
			return ext, true
		}
	}
	return "", false
}

// Remove deletes a previously stored image. Paths outside /uploads/ are
// ignored. Failures are logged and never returned.
func (u *Uploader) Remove(stored string) {
	file, ok := u.localPath(stored)
	if !ok {
		return
	}
	if err := os.Remove(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			u.log.Debug("old image already gone", zap.String("path", stored))
			return
		}
		u.log.Warn("remove old image", zap.String("path", stored), zap.Error(err))
		return
	}
	u.log.Debug("old image removed", zap.String("path", stored))
}

func (u *Uploader) localPath(stored string) (string, bool) {
	if !strings.HasPrefix(stored, PublicPrefix) {
		return "", false
	}
	rel := path.Clean("/" + strings.TrimPrefix(stored, PublicPrefix))
	if rel == "/" {
		return "", false
	}
	return filepath.Join(u.root, filepath.FromSlash(rel)), true
}
