package errors

import "errors"

var (
	ErrSessionNotFound  = errors.New("session was not found")
	ErrSessionExists    = errors.New("session already registered")
	ErrIllegalMove      = errors.New("illegal move")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidPath      = errors.New("path does not resolve")
	ErrCycle            = errors.New("node is already an ancestor")
	ErrAlreadyAttached  = errors.New("node is already in the tree")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNothingToRedo    = errors.New("nothing to redo")
	ErrNotFound         = errors.New("key not found")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrUnknownBackend   = errors.New("unknown store backend")
	ErrImportInProgress = errors.New("import already in progress")
	ErrUnknownOperation = errors.New("unknown edit operation")
	ErrInvalidPGN       = errors.New("invalid pgn")
	ErrInternal         = errors.New("internal error")
)
