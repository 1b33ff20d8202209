package mmap

import "errors"

// AccessPattern hints to the kernel how mapped data will be accessed.
type AccessPattern int

const (
	// AccessDefault gives no specific advice.
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be read front to back.
	AccessSequential
	// AccessRandom expects scattered reads.
	AccessRandom
	// AccessWillNeed expects data to be accessed soon.
	AccessWillNeed
	// AccessDontNeed expects data to go cold.
	AccessDontNeed
)

var (
	// ErrClosed is returned when accessing a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the file size is negative or too large.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned on a negative read offset.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
