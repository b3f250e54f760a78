package signer

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrKeyNotFound          = errors.New("key not found")
	ErrUnsupportedKeyFormat = errors.New("unsupported key format")
	ErrServiceUnavailable   = errors.New("custody service unavailable")
	ErrSigningService       = errors.New("signing service error")
	ErrMalformedSignature   = errors.New("malformed signature")
)

const (
	opResolve = "resolve"
	opSign    = "sign"
)

// Error 携带失败的操作、key id、错误类别和原始原因
// errors.Is 按 Kind 匹配，errors.Unwrap 返回原始原因
type Error struct {
	Op    string
	KeyID string
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.KeyID != "" {
		b.WriteString(" ")
		b.WriteString(e.KeyID)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}
