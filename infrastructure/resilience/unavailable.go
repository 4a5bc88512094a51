package resilience

import (
	"context"

	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// UnavailableObjectStore rejects every call. It stands in for a remote
// backend that cannot be reached, so every upload is saved locally.
type UnavailableObjectStore struct{}

// PutImage always fails
func (UnavailableObjectStore) PutImage(context.Context, []byte, string, string) (string, error) {
	return "", appErrors.NewUnavailableError("object store")
}

// DeleteImage always fails
func (UnavailableObjectStore) DeleteImage(context.Context, string) error {
	return appErrors.NewUnavailableError("object store")
}
