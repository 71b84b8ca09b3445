package service

import (
	"errors"
	"strings"
)

var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("authentication error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// Detail strips the sentinel prefix from an error built as
// fmt.Errorf("%w: detail", sentinel).
func Detail(err error, sentinel error) string {
	msg := err.Error()
	if detail, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return detail
	}
	return msg
}
