package utils

import "github.com/segmentio/ksuid"

// NewID 按时间有序的 27 位 KSUID，用作书/书评主键
func NewID() string { return ksuid.New().String() }
