package catalog

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PhotoStore is the product image collaborator: store an upload, get back a
// path to serve and to delete by.
type PhotoStore interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
	Remove(path string) error
}

type DiskPhotoStore struct {
	dir string
}

func NewDiskPhotoStore(dir string) (*DiskPhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskPhotoStore{dir: dir}, nil
}

func (s *DiskPhotoStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(header.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *DiskPhotoStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	return os.Remove(path)
}
