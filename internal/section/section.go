// Package section wraps the outcome of one chart section in an envelope so
// that a failing section never hides its siblings on the same page.
package section

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/explorador/imdbexplorer/internal/dataset"
)

// Status is the outcome of a section render.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)

var (
	// ErrEmptyResult means the selection is valid but filtered everything out.
	ErrEmptyResult = errors.New("empty result")
	// ErrInvalidSelection means the selection breaks a constraint and nothing was computed.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Error carries the user-facing message of a section failure.
type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Empty returns an ErrEmptyResult with a formatted message.
func Empty(format string, args ...any) error {
	return &Error{kind: ErrEmptyResult, Message: fmt.Sprintf(format, args...)}
}

// Invalid returns an ErrInvalidSelection with a formatted message.
func Invalid(format string, args ...any) error {
	return &Error{kind: ErrInvalidSelection, Message: fmt.Sprintf(format, args...)}
}

const (
	msgSourceMissing = "No se pudieron cargar los datos. Verifica las rutas de los archivos CSV/TSV y sus contenidos."
	msgSourceInvalid = "Ocurrió un error al cargar o procesar los datos. Verifica el formato del archivo y los nombres de las columnas."
	msgUnexpected    = "Error inesperado al generar la sección."
)

// Envelope is the JSON shape of one section.
type Envelope struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK reports whether the section rendered.
func (e Envelope) OK() bool {
	return e.Status == StatusOK
}

// New builds the envelope for a render result.
func New(data any, err error) Envelope {
	if err == nil {
		return Envelope{Status: StatusOK, Data: data}
	}
	status, message := Classify(err)
	env := Envelope{Status: status, Message: message}
	if status == StatusError {
		env.Detail = err.Error()
	}
	return env
}

// Run renders one section and wraps its outcome.
func Run[T any](render func() (T, error)) Envelope {
	data, err := render()
	if err != nil {
		return New(nil, err)
	}
	return New(data, nil)
}

// Classify maps an error to a section status and user-facing message.
func Classify(err error) (Status, string) {
	var secErr *Error
	switch {
	case err == nil:
		return StatusOK, ""
	case errors.As(err, &secErr) && errors.Is(err, ErrInvalidSelection):
		return StatusInfo, secErr.Message
	case errors.As(err, &secErr) && errors.Is(err, ErrEmptyResult):
		return StatusWarning, secErr.Message
	case errors.Is(err, ErrInvalidSelection):
		return StatusInfo, err.Error()
	case errors.Is(err, ErrEmptyResult):
		return StatusWarning, err.Error()
	case errors.Is(err, dataset.ErrSourceMissing):
		return StatusError, msgSourceMissing
	case errors.Is(err, dataset.ErrSourceInvalid):
		return StatusError, msgSourceInvalid
	default:
		return StatusError, msgUnexpected
	}
}

// HTTPStatus is the code a standalone section endpoint answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidSelection):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyResult):
		return http.StatusOK
	case errors.Is(err, dataset.ErrSourceMissing), errors.Is(err, dataset.ErrSourceInvalid):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes a standalone section response.
func Respond(c echo.Context, data any, err error) error {
	return c.JSON(HTTPStatus(err), New(data, err))
}
