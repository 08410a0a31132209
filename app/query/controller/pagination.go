package controller

import (
	"errors"
	"net/http"
	"strconv"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

var (
	errBadLimit  = errors.New("limit must be a positive integer")
	errBadOffset = errors.New("offset must be a non-negative integer")
)

// pageSpec carries the pagination knobs common to the list endpoints.
type pageSpec struct {
	Limit  uint64
	Offset uint64
}

func parsePageSpec(r *http.Request) (pageSpec, error) {
	spec := pageSpec{Limit: defaultPageLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || limit == 0 {
			return spec, errBadLimit
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
		spec.Limit = limit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return spec, errBadOffset
		}
		spec.Offset = offset
	}

	return spec, nil
}
