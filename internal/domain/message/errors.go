package message

import "errors"

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyBody       = errors.New("message body is empty")
)
