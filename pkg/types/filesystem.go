package types

import "time"

// EntryInfo describes one entry returned by a directory listing. Listings
// are ordered directories-first, then lexicographically (SPEC_FULL.md §4.2).
type EntryInfo struct {
	Name     string    `json:"name"`
	IsDir    bool      `json:"is_directory"`
	Size     int64     `json:"size"`
	Mode     uint32    `json:"mode"`
	ModTime  time.Time `json:"modified_at"`
	Symlink  bool      `json:"is_symlink,omitempty"`
}

// RenameFile is one source/destination pair in a bulk rename request.
type RenameFile struct {
	From string `json:"from"`
	To   string `json:"to"`
}
