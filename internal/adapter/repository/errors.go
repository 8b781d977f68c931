package repository

import "errors"

var (
	ErrNotFound   = errors.New("repository: not found")
	ErrNoDatabase = errors.New("repository: database not configured")
)
