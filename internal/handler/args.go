package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/iliyamo/gig-board/internal/model"
	"github.com/iliyamo/gig-board/internal/service"
)

// arguments holds the raw arguments of one operation, either decoded from
// a JSON object (numbers kept as json.Number) or taken from a query string.
// Every required argument is checked here, before the service is called.
type arguments struct {
	vals      map[string]any
	fromQuery bool
}

func jsonArguments(field string, raw []byte) (arguments, error) {
	a := arguments{vals: map[string]any{}}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return a, nil
	}
	if err := decodeObject(raw, &a.vals); err != nil {
		return a, &service.ValidationError{Field: field, Reason: "must be a JSON object"}
	}
	return a, nil
}

// decodeObject decodes exactly one JSON value from raw into dst, keeping
// numbers as json.Number. Trailing data is an error.
func decodeObject(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func queryArguments(q url.Values) arguments {
	a := arguments{vals: map[string]any{}, fromQuery: true}
	for k, v := range q {
		if len(v) > 0 {
			a.vals[k] = v[0]
		}
	}
	return a
}

// requiredString returns a string argument that must be present. The empty
// string is a valid value.
func (a arguments) requiredString(name string) (string, error) {
	v, ok := a.vals[name]
	if !ok || v == nil {
		return "", &service.ValidationError{Field: name, Reason: "is required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &service.ValidationError{Field: name, Reason: "must be a string"}
	}
	return s, nil
}

// nonBlankString is requiredString that also rejects blank values.
func (a arguments) nonBlankString(name string) (string, error) {
	s, err := a.requiredString(name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", &service.ValidationError{Field: name, Reason: "must not be empty"}
	}
	return s, nil
}

// optionalString returns the argument or "" when it is absent or null.
func (a arguments) optionalString(name string) (string, error) {
	v, ok := a.vals[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &service.ValidationError{Field: name, Reason: "must be a string"}
	}
	return s, nil
}

// requiredInt returns a non-negative integer argument.
func (a arguments) requiredInt(name string) (int64, error) {
	v, ok := a.vals[name]
	if !ok || v == nil || v == "" {
		return 0, &service.ValidationError{Field: name, Reason: "is required"}
	}
	var (
		n   int64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		n, err = t.Int64()
	case string:
		if !a.fromQuery {
			return 0, &service.ValidationError{Field: name, Reason: "must be an integer"}
		}
		n, err = strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	default:
		return 0, &service.ValidationError{Field: name, Reason: "must be an integer"}
	}
	if err != nil {
		return 0, &service.ValidationError{Field: name, Reason: "must be an integer"}
	}
	if n < 0 {
		return 0, &service.ValidationError{Field: name, Reason: "must be a non-negative integer"}
	}
	return n, nil
}

// page reads the required limit and offset arguments.
func (a arguments) page() (model.Page, error) {
	limit, err := a.requiredInt("limit")
	if err != nil {
		return model.Page{}, err
	}
	offset, err := a.requiredInt("offset")
	if err != nil {
		return model.Page{}, err
	}
	return model.Page{Limit: limit, Offset: offset}, nil
}

// newGig reads the createGig arguments. All of them are required; only the
// title has to be non-blank.
func (a arguments) newGig() (model.NewGig, error) {
	var in model.NewGig
	title, err := a.nonBlankString("title")
	if err != nil {
		return model.NewGig{}, err
	}
	in.Title = title
	fields := []struct {
		name string
		dst  *string
	}{
		{"price", &in.Price},
		{"description", &in.Description},
		{"contactPhone", &in.ContactPhone},
		{"contactEmail", &in.ContactEmail},
		{"contactName", &in.ContactName},
		{"location", &in.Location},
		{"category", &in.Category},
	}
	for _, f := range fields {
		v, err := a.requiredString(f.name)
		if err != nil {
			return model.NewGig{}, err
		}
		*f.dst = v
	}
	return in, nil
}
