package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("only image uploads are allowed")
)

// Uploader guarda imágenes subidas en disco con nombres generados
type Uploader struct {
	dir      string
	maxBytes int64
}

func NewUploader(dir string, maxBytes int64) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Uploader{dir: dir, maxBytes: maxBytes}, nil
}

// Dir devuelve el directorio donde se guardan los archivos
func (u *Uploader) Dir() string {
	return u.dir
}

// Save valida el archivo por contenido y lo guarda; devuelve el nombre generado
func (u *Uploader) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > u.maxBytes {
		return "", fmt.Errorf("%s: %w", fh.Filename, ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	mime, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect type of %s: %w", fh.Filename, err)
	}
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%s (%s): %w", fh.Filename, mime.String(), ErrUnsupportedType)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload %s: %w", fh.Filename, err)
	}

	name := uuid.NewString() + mime.Extension()
	dst, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, u.maxBytes)); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	return name, nil
}

// SaveAll guarda varios archivos y conserva el orden recibido. Si uno falla,
// borra los ya escritos.
func (u *Uploader) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := u.Save(fh)
		if err != nil {
			u.Remove(names...)
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Remove borra archivos guardados previamente; ignora los que no existen
func (u *Uploader) Remove(names ...string) {
	for _, name := range names {
		_ = os.Remove(filepath.Join(u.dir, filepath.Base(name)))
	}
}
