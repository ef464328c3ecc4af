// Package storage archives uploaded recordings to object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"voxform/internal/domain"
	"voxform/internal/port"
)

type audioArchive struct {
	store  port.ObjectStorage
	bucket string
}

// NewAudioArchive stores recordings in bucket under audio/{session}/{uuid}.{ext}.
func NewAudioArchive(store port.ObjectStorage, bucket string) port.AudioArchive {
	return &audioArchive{store: store, bucket: bucket}
}

func (a *audioArchive) Archive(ctx context.Context, sessionID string, audio []byte, format domain.AudioFormat) (string, error) {
	if format == "" {
		format = domain.AudioWAV
	}
	key := AudioKey(sessionID, uuid.New(), format)
	_, err := a.store.Upload(ctx, port.UploadInput{
		Bucket:      a.bucket,
		Key:         key,
		Body:        bytes.NewReader(audio),
		ContentType: format.ContentType(),
		Size:        int64(len(audio)),
	})
	if err != nil {
		return "", fmt.Errorf("archiving audio: %w", err)
	}
	return key, nil
}

// AudioKey builds the object key for one recording.
func AudioKey(sessionID string, id uuid.UUID, format domain.AudioFormat) string {
	return fmt.Sprintf("audio/%s/%s.%s", sessionID, id, format)
}

type noopArchive struct{}

// NewNoopArchive returns an archive that stores nothing.
func NewNoopArchive() port.AudioArchive { return noopArchive{} }

func (noopArchive) Archive(context.Context, string, []byte, domain.AudioFormat) (string, error) {
	return "", nil
}
