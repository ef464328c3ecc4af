package port

import (
	"context"
	"io"

	"voxform/internal/domain"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts cloud object storage used for the audio archive.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
}

// AudioArchive keeps a copy of uploaded recordings.
type AudioArchive interface {
	// Archive stores the recording and returns its object key.
	Archive(ctx context.Context, sessionID string, audio []byte, format domain.AudioFormat) (string, error)
}
