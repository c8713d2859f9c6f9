package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrFileNameTooLong = errors.New("file name is too long")
	ErrFileNameEmpty   = errors.New("file name is empty")
	ErrFileNameInvalid = errors.New("file name contains invalid characters")
	ErrNoFile          = errors.New("no file provided")
)

const MaxFileNameSize = 245

// FileNameValidator checks a display name as given on upload or rename
func FileNameValidator(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrFileNameEmpty
	}

	if len(name) > MaxFileNameSize {
		return ErrFileNameTooLong
	}

	if strings.ContainsAny(name, "/\\\x00") {
		return ErrFileNameInvalid
	}

	return nil
}

// FileValidator checks an uploaded form file and returns it opened and
// rewound together with its sniffed content type. The returned status is
// meant to be sent to the client when err is not nil.
func FileValidator(fh *multipart.FileHeader, maxSize int64) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	if err := FileNameValidator(fh.Filename); err != nil {
		return http.StatusBadRequest, nil, "", err
	}

	// Rejected before the body is ever read
	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	// The header size can be spoofed, make sure there's nothing past the limit
	if _, err := f.Seek(maxSize, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	buf := make([]byte, 1)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if n > 0 {
		f.Close()
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	return http.StatusOK, f, mime.String(), nil
}
