// Package storage stores uploaded avatar images.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Uploader persists an uploaded object and returns its storage ID and
// public URL. Object storage proper is an external collaborator; DiskUploader
// is the local implementation used by default.
type Uploader interface {
	Upload(filename string, r io.Reader) (id string, url string, err error)
	Remove(id string) error
}

// DiskUploader stores objects on the local filesystem under Dir and serves
// them from BaseURL.
type DiskUploader struct {
	Dir     string
	BaseURL string
}

// NewDiskUploader returns a DiskUploader rooted at dir.
func NewDiskUploader(dir, baseURL string) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &DiskUploader{Dir: dir, BaseURL: baseURL}, nil
}

// Upload writes r to a uniquely-named file, keeping the original extension.
func (u *DiskUploader) Upload(filename string, r io.Reader) (string, string, error) {
	id := uuid.New().String() + filepath.Ext(filename)

	f, err := os.Create(filepath.Join(u.Dir, id))
	if err != nil {
		return "", "", fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", "", fmt.Errorf("writing upload file: %w", err)
	}

	return id, u.BaseURL + "/uploads/" + id, nil
}

// Remove deletes a stored object. Missing objects are not an error.
func (u *DiskUploader) Remove(id string) error {
	err := os.Remove(filepath.Join(u.Dir, id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
