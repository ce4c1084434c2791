package store

import "time"

// Entry is one persisted docstring record.
type Entry struct {
	Identity  string
	FilePath  string
	FuncName  string
	Docstring string
	CreatedAt time.Time
}
