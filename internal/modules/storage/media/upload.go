package media

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Upload is an incoming image before it reaches the backend.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
	closer      io.Closer
}

// FromFileHeader opens a multipart part. The caller must Close the result.
func FromFileHeader(fh *multipart.FileHeader) (*Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
		closer:      f,
	}, nil
}

// FromBytes wraps an in-memory payload.
func FromBytes(filename, contentType string, data []byte) *Upload {
	return &Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}
}

func (u *Upload) Close() error {
	if u == nil || u.closer == nil {
		return nil
	}
	return u.closer.Close()
}

// DeclaredType returns the declared MIME type, falling back to the file extension.
func (u *Upload) DeclaredType() string {
	typ := strings.TrimSpace(u.ContentType)
	if typ == "" {
		typ = mime.TypeByExtension(strings.ToLower(filepath.Ext(u.Filename)))
	}
	if i := strings.IndexByte(typ, ';'); i >= 0 {
		typ = typ[:i]
	}
	return strings.ToLower(strings.TrimSpace(typ))
}
