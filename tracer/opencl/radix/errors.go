package radix

import (
	"errors"
	"fmt"
)

var (
	ErrTooManyItems = fmt.Errorf("radix sort: item count exceeds the maximum of %d", MaxItems)
	ErrSizeMismatch = errors.New("radix sort: key and value lists must have the same length")
)
