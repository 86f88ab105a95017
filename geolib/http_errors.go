package geolib

import (
	"encoding/json"
	"errors"
	"net/http"
)

type jsonHTTPErrorBody struct {
	Message string `json:"message"`
	Context string `json:"context"`
	Kind    string `json:"kind,omitempty"`
}

type jsonHTTPError struct {
	Error jsonHTTPErrorBody `json:"error"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

// StatusCode returns an explicit status code if it is set. Otherwise
// status code is derived from a kind of wrapped error.
func (h *httpError) StatusCode() int {
	switch {
	case h == nil:
		return http.StatusInternalServerError
	case h.statusCode != 0:
		return h.statusCode
	case h.err != nil:
		return statusCodeForError(h.err)
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

func (h *httpError) body() *jsonHTTPErrorBody {
	rv := &jsonHTTPErrorBody{
		Message: h.Message(),
		Context: h.Err(),
	}

	if h != nil && h.err != nil {
		rv.Kind = KindOf(h.err).String()
	}

	return rv
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&jsonHTTPError{Error: *h.body()})
}

func statusCodeForError(err error) int {
	var chainErr *ChainError

	if errors.As(err, &chainErr) {
		return statusCodeForChain(chainErr)
	}

	return statusCodeForKind(KindOf(err))
}

// statusCodeForChain returns a specific status code only if every member
// has failed for the same reason.
func statusCodeForChain(err *ChainError) int {
	kinds := err.Kinds()
	if len(kinds) == 0 {
		return http.StatusBadGateway
	}

	for _, v := range kinds[1:] {
		if v != kinds[0] {
			return http.StatusBadGateway
		}
	}

	return statusCodeForKind(kinds[0])
}

func statusCodeForKind(kind ErrorKind) int {
	switch kind {
	case KindNoResult:
		return http.StatusNotFound
	case KindUnsupportedOperation:
		return http.StatusBadRequest
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	}

	return http.StatusBadGateway
}
