package client

import (
	"errors"
	"fmt"
)

// Kind 标识生成请求失败的类别。
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNetwork           Kind = "network"
	KindHTTP              Kind = "http"
	KindMalformedResponse Kind = "malformed_response"
)

// Error is the single error type returned by Submit.
type Error struct {
	Kind   Kind
	Status int // only set for KindHTTP
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("HTTP error! status: %d", e.Status)
	case KindNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	case KindMalformedResponse:
		return fmt.Sprintf("malformed response: %v", e.Err)
	case KindValidation:
		return fmt.Sprintf("validation error: %v", e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind 判断 err 链中是否存在指定类别的 *Error。
func IsKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

// StatusOf 返回 HTTP 失败的状态码，其余情况为 0。
func StatusOf(err error) int {
	var ce *Error
	if errors.As(err, &ce) && ce.Kind == KindHTTP {
		return ce.Status
	}
	return 0
}
