package catalog

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound        = errors.New("catalog: not found")
	ErrNotImage        = errors.New("catalog: file is not an image")
	ErrPictureTooLarge = errors.New("catalog: picture exceeds size limit")
	ErrNoPicturePath   = errors.New("catalog: upload response has no picture path")
)

// APIError is a non-2xx answer from the catalog API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}
