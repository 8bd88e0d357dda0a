package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	// Same as folder names for consistency.
	MaxFileNameLength = 255

	// MaxMimeTypeLength bounds the declared MIME type of an upload.
	MaxMimeTypeLength = 255

	// MaxUploadBytes is the maximum accepted upload size (100 MB).
	MaxUploadBytes = 100 << 20

	// MaxContentBytes bounds editor content updates (10 MB).
	MaxContentBytes = 10 << 20
)
