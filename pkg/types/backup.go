package types

import "github.com/google/uuid"

// BackupPart describes one uploaded part of a multi-part backup upload,
// reported back to the remote in RawServerBackup.Parts.
type BackupPart struct {
	ETag string `json:"etag"`
	Part int    `json:"part_number"`
}

// RawServerBackup is the status payload posted back to the remote once a
// backup has been created (or has failed).
type RawServerBackup struct {
	Checksum     string       `json:"checksum"`
	ChecksumType string       `json:"checksum_type"`
	Size         uint64       `json:"size"`
	Successful   bool         `json:"successful"`
	Parts        []BackupPart `json:"parts,omitempty"`
}

// BackupUploadURLs is the response to a presigned-upload-URL request.
type BackupUploadURLs struct {
	PartSize uint64   `json:"part_size"`
	URLs     []string `json:"parts"`
}

// BackupInfo identifies a backup that exists on local disk.
type BackupInfo struct {
	UUID uuid.UUID
	Size int64
}
