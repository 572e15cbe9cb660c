package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. IO failures surface as the wrapped os errors from
// open/stat; everything structural wraps one of these.
var (
	ErrFormat      = errors.New("model: bad format")
	ErrOutOfMemory = errors.New("model: out of memory")
)

// BadMagicError reports a file whose leading tag is not Magic.
type BadMagicError struct {
	Magic [4]byte
}

func (e BadMagicError) Error() string {
	return fmt.Sprintf("model: bad magic %q (want %q)", e.Magic[:], Magic)
}

func (e BadMagicError) Unwrap() error { return ErrFormat }

// SizeError reports a file whose length disagrees with the header's
// declared dimensions.
type SizeError struct {
	Got  int64
	Want int64
}

func (e SizeError) Error() string {
	return fmt.Sprintf("model: file is %d bytes, header implies %d", e.Got, e.Want)
}

func (e SizeError) Unwrap() error { return ErrFormat }
