// Package media stores uploaded images on local disk.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

var (
	imageExts  = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	unsafeName = regexp.MustCompile(`[^\w\-.]`)
)

// Store writes files under Root and serves them from URL.
type Store struct {
	Root string
	URL  string
}

func NewStore(root, url string) *Store {
	return &Store{Root: root, URL: strings.TrimSuffix(url, "/")}
}

// CleanName strips directories and repeated image extensions and replaces
// anything outside [A-Za-z0-9_-.] with underscores.
func CleanName(name string) (base, ext string) {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext = strings.ToLower(filepath.Ext(name))
	base = strings.TrimSuffix(name, filepath.Ext(name))
	for {
		e := strings.ToLower(filepath.Ext(base))
		if e == "" || !imageExts[e] {
			break
		}
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = unsafeName.ReplaceAllString(strings.ReplaceAll(base, " ", "_"), "_")
	if base == "" || base == "." {
		base = "upload"
	}
	return base, ext
}

// SaveImage copies an uploaded image into dir and returns its path relative
// to Root, using forward slashes.
func (s *Store) SaveImage(fh *multipart.FileHeader, dir string) (string, error) {
	base, ext := CleanName(fh.Filename)
	if !imageExts[ext] {
		return "", fmt.Errorf("%s: %w", ext, ErrUnsupportedImage)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	rel := path.Join(dir, fmt.Sprintf("%s_%s%s", uuid.NewString()[:8], base, ext))
	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return rel, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	full := filepath.Join(s.Root, filepath.FromSlash(path.Clean("/"+rel)))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// PublicURL maps a stored path to the URL it is served from.
func (s *Store) PublicURL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.URL + "/" + strings.TrimPrefix(rel, "/")
}
