package util

import (
	"errors"
	"fmt"
)

// 错误类别，控制器通过 errors.Is 映射为 HTTP 状态码
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// kindError 带类别的业务错误，Error() 只返回面向客户端的描述
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func Validationf(format string, args ...interface{}) error {
	return NewError(ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) error {
	return NewError(ErrNotFound, fmt.Sprintf(format, args...))
}

var (
	ErrUserNotFound         = NewError(ErrNotFound, "User not found")
	ErrEmailRegistered      = NewError(ErrConflict, "Email already exists")
	ErrInvalidCredentials   = NewError(ErrValidation, "Invalid credentials")
	ErrPermissionDenied     = NewError(ErrForbidden, "Forbidden")
	ErrSubjectNotFound      = NewError(ErrNotFound, "Subject not found")
	ErrSubjectExists        = NewError(ErrConflict, "Subject already exists")
	ErrSystemNotFound       = NewError(ErrNotFound, "System not found")
	ErrInvalidSystem        = NewError(ErrValidation, "Invalid system ID")
	ErrSubSystemNotFound    = NewError(ErrNotFound, "Subsystem not found")
	ErrQuestionNotFound     = NewError(ErrNotFound, "Question not found")
	ErrQuestionCodeExists   = NewError(ErrConflict, "Question ID already exists")
	ErrQuizNotFound         = NewError(ErrNotFound, "Quiz not found")
	ErrQuestionNotInQuiz    = NewError(ErrNotFound, "Question is not part of this quiz")
	ErrQuizAlreadySubmitted = NewError(ErrConflict, "Quiz already submitted")
	ErrInvalidFileType      = NewError(ErrValidation, "Only images allowed")
)
