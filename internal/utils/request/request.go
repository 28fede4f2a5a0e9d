// Package request holds the parsing steps every handler repeats: reading a
// JSON body, validating it, and turning path or query values into integers.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyBody is returned by Decode when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// validate is shared: validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = validator.New()

// Decode reads a JSON body into v and validates it. A failed validation is
// returned as validator.ValidationErrors so callers can render it field by
// field.
func Decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	if err != nil {
		return err
	}

	return validate.Struct(v)
}

// PathInt parses the named path value as a positive integer.
func PathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return n, nil
}

// IntList parses a comma-separated list such as "1,2,3". Blank input and
// blank elements yield no ids; a non-integer element is an error.
func IntList(raw string) ([]int, error) {
	ids := make([]int, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: must be an integer", part)
		}
		ids = append(ids, n)
	}
	return ids, nil
}

// QueryIntList collects every value of the named query parameter, each of
// which may itself be a comma-separated list.
func QueryIntList(r *http.Request, name string) ([]int, error) {
	ids := make([]int, 0)
	for _, raw := range r.URL.Query()[name] {
		part, err := IntList(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, part...)
	}
	return ids, nil
}
