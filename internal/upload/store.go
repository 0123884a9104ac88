package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
)

var ErrNotImage = errors.New("only image files are allowed")

// Store keeps uploaded product images on local disk and hands back the
// relative URL path they are served under.
type Store struct {
	dir       string
	urlPrefix string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &Store{dir: dir, urlPrefix: "/uploads/products"}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the uploaded file under a unique name and returns the
// public path to store on the product record.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return "", ErrNotImage
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}

	filename := name.String() + filepath.Ext(fh.Filename)

	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.urlPrefix + "/" + filename, nil
}
