package platform

import (
	"errors"
	"fmt"
	stdhttp "net/http"
)

var ErrAuth = errors.New("authentication failed")

// StatusError - ответ платформы вне 2xx.
type StatusError struct {
	Method string
	Path   string
	Code   int
	// начало тела ответа, для диагностики
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d (%s)", e.Method, e.Path, e.Code, stdhttp.StatusText(e.Code))
}

// IsUnauthorized - токен протух или не подошёл.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == stdhttp.StatusUnauthorized
}

// IsTimeout различает таймауты транспорта и прочие ошибки сети.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
