package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// DescriptorDelimiter separates the messages of one status when they are rendered as a single string.
const DescriptorDelimiter = " |OR| "

var (
	// ErrAmbiguousStatus is returned by Info when the error carries several
	// statuses and the caller did not pick one.
	ErrAmbiguousStatus = errors.New("multiple response status codes, the status code must be specified")

	// ErrStatusNotFound is returned by Info when the requested status is not part of the error.
	ErrStatusNotFound = errors.New("status code cannot be found")
)

type entry struct {
	status   int
	messages []string
}

// ResponseError is an ordered set of (status, messages) entries. Values are
// immutable once built; every method returning a ResponseError returns a new one.
type ResponseError struct {
	entries []entry
	extra   string
}

// New creates a ResponseError with a single status.
func New(status int, messages ...string) *ResponseError {
	return &ResponseError{entries: []entry{{status: status, messages: slices.Clone(messages)}}}
}

// Union merges errs from left to right. Messages for a status already present
// are appended after the existing ones; new statuses keep their order of first
// appearance. Nil values are skipped.
func Union(errs ...*ResponseError) *ResponseError {
	out := &ResponseError{}
	for _, e := range errs {
		if e == nil {
			continue
		}
		for _, en := range e.entries {
			out.add(en.status, en.messages...)
		}
	}
	return out
}

// Union returns the union of e and others.
func (e *ResponseError) Union(others ...*ResponseError) *ResponseError {
	return Union(append([]*ResponseError{e}, others...)...)
}

func (e *ResponseError) add(status int, messages ...string) {
	for i := range e.entries {
		if e.entries[i].status == status {
			e.entries[i].messages = append(e.entries[i].messages, messages...)
			return
		}
	}
	e.entries = append(e.entries, entry{status: status, messages: slices.Clone(messages)})
}

// WithExtra returns a copy of e whose rendered message ends with " :=> info".
// It is used to attach call-site details such as the URL that could not be reached.
func (e *ResponseError) WithExtra(info any) *ResponseError {
	out := &ResponseError{entries: make([]entry, len(e.entries)), extra: fmt.Sprint(info)}
	for i, en := range e.entries {
		out.entries[i] = entry{status: en.status, messages: slices.Clone(en.messages)}
	}
	return out
}

// Statuses lists the status codes in insertion order.
func (e *ResponseError) Statuses() []int {
	out := make([]int, len(e.entries))
	for i, en := range e.entries {
		out[i] = en.status
	}
	return out
}

// Messages returns the messages recorded for status, or nil.
func (e *ResponseError) Messages(status int) []string {
	for _, en := range e.entries {
		if en.status == status {
			return slices.Clone(en.messages)
		}
	}
	return nil
}

// StatusCode is the status of the first entry, or 500 for an empty error.
func (e *ResponseError) StatusCode() int {
	if len(e.entries) == 0 {
		return http.StatusInternalServerError
	}
	return e.entries[0].status
}

// Info returns the status and rendered message for status. A zero status is
// only accepted when the error carries exactly one status.
func (e *ResponseError) Info(status int) (int, string, error) {
	var en entry
	switch {
	case len(e.entries) == 0:
		return 0, "", ErrStatusNotFound
	case status == 0 && len(e.entries) > 1:
		return 0, "", ErrAmbiguousStatus
	case status == 0 || len(e.entries) == 1:
		en = e.entries[0]
	default:
		idx := slices.IndexFunc(e.entries, func(x entry) bool { return x.status == status })
		if idx < 0 {
			return 0, "", fmt.Errorf("%w: %d", ErrStatusNotFound, status)
		}
		en = e.entries[idx]
	}
	return en.status, e.render(en.messages), nil
}

func (e *ResponseError) render(messages []string) string {
	msg := strings.Join(messages, DescriptorDelimiter)
	if e.extra != "" {
		msg += " :=> " + e.extra
	}
	return msg
}

// Error renders every message of every status joined by DescriptorDelimiter.
func (e *ResponseError) Error() string {
	var all []string
	for _, en := range e.entries {
		all = append(all, en.messages...)
	}
	return e.render(all)
}

// Descriptor maps every status to its rendered messages, without extra information.
func (e *ResponseError) Descriptor() map[int]string {
	out := make(map[int]string, len(e.entries))
	for _, en := range e.entries {
		out[en.status] = strings.Join(en.messages, DescriptorDelimiter)
	}
	return out
}

// Is reports whether target is a ResponseError with the same entries. Extra
// information is ignored, so errors.Is(err.WithExtra(url), Client.ConnectionError) holds.
func (e *ResponseError) Is(target error) bool {
	var t *ResponseError
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return slices.EqualFunc(e.entries, t.entries, func(a, b entry) bool {
		return a.status == b.status && slices.Equal(a.messages, b.messages)
	})
}

// As extracts a *ResponseError from err's chain.
func As(err error) (*ResponseError, bool) {
	var re *ResponseError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// StatusOf returns the status code carried by err, or 500 when err is not a ResponseError.
func StatusOf(err error) int {
	if re, ok := As(err); ok {
		return re.StatusCode()
	}
	return http.StatusInternalServerError
}
