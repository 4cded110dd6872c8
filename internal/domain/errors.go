package domain

import (
	"errors"
	"fmt"
	"io"
)

// Kind 错误分类，HTTP 层据此映射响应码
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindUnauthorized        Kind = "unauthorized"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindUpstreamMalformed   Kind = "upstream_malformed"
	KindInternal            Kind = "internal_error"
)

type Error struct {
	Kind   Kind
	Msg    string
	Status int // 上游 HTTP 状态（已知时）
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Format %+v 时带出底层错误的堆栈（pkg/errors）
func (e *Error) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+') && e.Err != nil:
		fmt.Fprintf(s, "%s: %+v", e.Msg, e.Err)
	case verb == 'q':
		fmt.Fprintf(s, "%q", e.Error())
	default:
		_, _ = io.WriteString(s, e.Error())
	}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// UpstreamUnavailable status 为 0 表示未拿到响应（超时/连接失败）
func UpstreamUnavailable(status int, err error) error {
	msg := "upstream unavailable"
	if status != 0 {
		msg = fmt.Sprintf("API responded with status: %d", status)
	}
	return &Error{Kind: KindUpstreamUnavailable, Msg: msg, Status: status, Err: err}
}

func UpstreamMalformed(err error) error {
	return &Error{Kind: KindUpstreamMalformed, Msg: "upstream returned malformed body", Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf 未分类的错误一律视为 internal_error
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }

// StatusOf 返回错误链上记录的上游状态码
func StatusOf(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.Status
	}
	return 0
}
