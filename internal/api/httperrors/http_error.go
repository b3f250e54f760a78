package httperrors

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPError 对外返回的错误体
type HTTPError struct {
	Code   int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`

	// Internal is logged but never rendered.
	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{
		Code:  code,
		Type:  errorType,
		Title: title,
	}
}

func NewFromEcho(e *echo.HTTPError) *HTTPError {
	return NewHTTPError(e.Code, TypeGeneric, http.StatusText(e.Code))
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTPError %d (%s): %s - %s", e.Code, e.Type, e.Title, e.Detail)
	}
	return fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// WithDetail 返回带详细说明的副本，不修改包级错误值
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	c := *e
	c.Detail = detail
	return &c
}

// WithInternal 返回附带内部原因的副本
func (e *HTTPError) WithInternal(err error) *HTTPError {
	c := *e
	c.Internal = err
	return &c
}
