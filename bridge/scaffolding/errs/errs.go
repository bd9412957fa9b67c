// Package errs provides the error values handlers return to the middleware.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

// ErrCode names a class of failure and how it is reported.
type ErrCode struct {
	value  string
	status int
	level  slog.Level
}

func (c ErrCode) String() string { return c.value }

// HTTPStatus is the status sent for errors of this code.
func (c ErrCode) HTTPStatus() int { return c.status }

// Level is the level the error is logged at.
func (c ErrCode) Level() slog.Level { return c.level }

// Set of error codes.
var (
	// InvalidArgument is a malformed request the client can fix.
	InvalidArgument = ErrCode{value: "invalid_argument", status: http.StatusBadRequest, level: slog.LevelWarn}

	// NotFound is a request for a record that does not exist.
	NotFound = ErrCode{value: "not_found", status: http.StatusNotFound, level: slog.LevelWarn}

	// Rejected is an operation that failed for a reason other than the input;
	// the message is still returned to the client.
	Rejected = ErrCode{value: "rejected", status: http.StatusBadRequest, level: slog.LevelError}

	// Internal is a server fault.
	Internal = ErrCode{value: "internal", status: http.StatusInternalServerError, level: slog.LevelError}

	// InternalOnlyLog is a server fault whose message must not leave the
	// process.
	InternalOnlyLog = ErrCode{value: "internal_only_log", status: http.StatusInternalServerError, level: slog.LevelError}
)

// Error is the error returned from handlers. It encodes to the JSON body
// {"success": false, "error": "<message>"}.
type Error struct {
	Code     ErrCode `json:"-"`
	Message  string  `json:"error"`
	FuncName string  `json:"-"`
	FileName string  `json:"-"`
}

// New wraps err with code, recording the caller.
func New(code ErrCode, err error) *Error {
	return newError(code, err.Error())
}

// Newf builds an error from a format string, recording the caller.
func Newf(code ErrCode, format string, v ...any) *Error {
	return newError(code, fmt.Sprintf(format, v...))
}

func newError(code ErrCode, msg string) *Error {
	pc, filename, line, _ := runtime.Caller(2)

	var funcName string
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcName = fn.Name()
	}

	return &Error{
		Code:     code,
		Message:  msg,
		FuncName: funcName,
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

func (e *Error) Error() string {
	return e.Message
}

// Encode implements the web.Encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	body := struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{
		Error: e.Message,
	}

	data, err := json.Marshal(body)
	return data, "application/json", err
}

// HTTPStatus implements the web status interface.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Equal reports whether err is an *Error with the same code.
func (e *Error) Equal(err error) bool {
	var other *Error
	if !errors.As(err, &other) {
		return false
	}
	return e.Code == other.Code
}
