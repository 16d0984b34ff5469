package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

const (
	multipartMemoryBytes = 8 << 20
	multipartOverhead    = 1 << 20
	sniffLength          = 512
)

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// parseMultipart bounds the body to maxBytes and parses the form. The caller
// must call cleanupMultipart once the files are consumed.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body exceeds %d bytes: %w", maxBytes, err)
		}
		return fmt.Errorf("%w: invalid multipart form: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// formFiles returns the files posted under any of the given field names.
func formFiles(r *http.Request, fields ...string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, field := range fields {
		out = append(out, r.MultipartForm.File[field]...)
	}
	return out
}

type openedUploads struct {
	files   []usecase.FileUpload
	closers []io.Closer
}

func (o *openedUploads) Close() {
	for _, c := range o.closers {
		_ = c.Close()
	}
}

func openUploads(headers []*multipart.FileHeader) (*openedUploads, error) {
	out := &openedUploads{files: make([]usecase.FileUpload, 0, len(headers))}
	for _, header := range headers {
		upload, closer, err := openUpload(header)
		if err != nil {
			out.Close()
			return nil, err
		}
		out.files = append(out.files, upload)
		out.closers = append(out.closers, closer)
	}
	return out, nil
}

func openUpload(header *multipart.FileHeader) (usecase.FileUpload, io.Closer, error) {
	file, err := header.Open()
	if err != nil {
		return usecase.FileUpload{}, nil, fmt.Errorf("%w: open upload %q: %v", usecase.ErrInvalidInput, header.Filename, err)
	}

	contentType, err := uploadContentType(header, file)
	if err != nil {
		_ = file.Close()
		return usecase.FileUpload{}, nil, err
	}

	return usecase.FileUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, file, nil
}

// uploadContentType trusts the part header unless it is missing or generic,
// in which case the leading bytes are sniffed and the file is rewound.
func uploadContentType(header *multipart.FileHeader, file multipart.File) (string, error) {
	declared := strings.TrimSpace(header.Header.Get("Content-Type"))
	if declared != "" && !strings.EqualFold(declared, "application/octet-stream") {
		return declared, nil
	}

	buf := make([]byte, sniffLength)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: read upload %q: %v", usecase.ErrInvalidInput, header.Filename, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload %q: %w", header.Filename, err)
	}
	return http.DetectContentType(buf[:n]), nil
}
