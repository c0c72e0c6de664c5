package gke

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// IsNotFound reports whether err is a 404 from the GKE API.
func IsNotFound(err error) bool {
	return isStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is a 409, which GKE returns when an
// operation is already in flight for the same resource.
func IsConflict(err error) bool {
	return isStatus(err, http.StatusConflict)
}

func isStatus(err error, code int) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
