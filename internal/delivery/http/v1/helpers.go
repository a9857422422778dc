package v1

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// Upload size caps, checked before the body is read into memory.
const (
	maxImageBytes    = 10 << 20
	maxDocumentBytes = 10 << 20
)

func currentUserID(c *gin.Context) int64 {
	v, _ := c.Get(string(domain.KeyUserID))
	id, _ := v.(int64)
	return id
}

func currentUserType(c *gin.Context) domain.UserType {
	v, _ := c.Get(string(domain.KeyUserRole))
	t, _ := v.(domain.UserType)
	return t
}

// bindError turns a binding failure into a 422 with field messages, or a
// 400 when the body could not be decoded at all.
func bindError(err error) error {
	if fields := validation.FieldErrors(err); fields != nil {
		return apperror.Validation(fields)
	}
	return apperror.BadRequest("Invalid request body")
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(domain.DefaultPageLimit)))
	return domain.NormalizePage(page, limit)
}

// optionalFloat reads a numeric query parameter; empty means absent.
func optionalFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperror.Validation(map[string][]string{name: {"must be a number"}})
	}
	return &v, nil
}

func optionalInt64(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return nil, apperror.Validation(map[string][]string{name: {"must be a positive integer"}})
	}
	return &v, nil
}

func readFile(fh *multipart.FileHeader, field string, maxBytes int64) (domain.FileUpload, error) {
	if fh.Size > maxBytes {
		return domain.FileUpload{}, apperror.Validation(map[string][]string{
			field: {fmt.Sprintf("must not be larger than %d MB", maxBytes>>20)},
		})
	}
	f, err := fh.Open()
	if err != nil {
		return domain.FileUpload{}, apperror.BadRequest("Could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return domain.FileUpload{}, apperror.BadRequest("Could not read uploaded file")
	}
	if int64(len(data)) > maxBytes {
		return domain.FileUpload{}, apperror.Validation(map[string][]string{
			field: {fmt.Sprintf("must not be larger than %d MB", maxBytes>>20)},
		})
	}
	return domain.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// optionalUpload returns nil when the field was not sent.
func optionalUpload(c *gin.Context, field string, maxBytes int64) (*domain.FileUpload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.BadRequest("Invalid multipart form")
	}
	upload, err := readFile(fh, field, maxBytes)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func requiredUpload(c *gin.Context, field string, maxBytes int64) (domain.FileUpload, error) {
	upload, err := optionalUpload(c, field, maxBytes)
	if err != nil {
		return domain.FileUpload{}, err
	}
	if upload == nil {
		return domain.FileUpload{}, apperror.Validation(map[string][]string{field: {"is required"}})
	}
	return *upload, nil
}

// multiUpload reads every file sent under field, accepting the "field[]"
// spelling browsers use.
func multiUpload(c *gin.Context, field string, maxBytes int64) ([]domain.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperror.BadRequest("Invalid multipart form")
	}

	var headers []*multipart.FileHeader
	headers = append(headers, form.File[field]...)
	headers = append(headers, form.File[field+"[]"]...)
	out := make([]domain.FileUpload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readFile(fh, field, maxBytes)
		if err != nil {
			return nil, err
		}
		out = append(out, upload)
	}
	return out, nil
}
