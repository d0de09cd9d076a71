package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
	ErrInvalidProfile  = fmt.Errorf("invalid profile")
	ErrInvalidPresence = fmt.Errorf("invalid presence")
	ErrUnknownAccount  = fmt.Errorf("unknown account")
	ErrInvalidSeed     = fmt.Errorf("invalid seed data")
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
)
