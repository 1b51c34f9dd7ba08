package bvh

import "errors"

var (
	ErrUnknownStrategy = errors.New("bvh: unknown build strategy")
	ErrInvalidLeafSize = errors.New("bvh: max leaf size must be at least 1")
)
