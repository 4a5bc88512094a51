package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Jabramco/memebase/application/services"
	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before spilling to temporary files
const multipartMemory = 32 << 20

func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return appErrors.NewValidationError(fmt.Sprintf("request body exceeds %d bytes", limit)).
				WithCode("FILE_TOO_LARGE").
				WithDetails(map[string]interface{}{"maxBytes": limit})
		}
		return appErrors.NewValidationError("invalid multipart form: " + err.Error())
	}
	return nil
}

// readFiles loads every file sent under field, in form order
func readFiles(r *http.Request, field string) ([]services.ImageFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	files := make([]services.ImageFile, 0, len(headers))
	for _, fh := range headers {
		file, err := readFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readFile(fh *multipart.FileHeader) (services.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return services.ImageFile{}, appErrors.NewValidationError("cannot read " + fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.ImageFile{}, appErrors.NewValidationError("cannot read " + fh.Filename)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return services.ImageFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: contentType,
		Data:        data,
	}, nil
}
