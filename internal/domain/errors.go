package domain

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUpstreamAuth   = errors.New("upstream auth failure")
	ErrUpstreamOrder  = errors.New("upstream order failure")
	ErrUpstreamStatus = errors.New("upstream status failure")
	ErrStore          = errors.New("order store failure")
	ErrNotify         = errors.New("notification failure")
)
