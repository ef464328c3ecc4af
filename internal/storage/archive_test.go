package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"voxform/internal/domain"
	"voxform/internal/port"
	"voxform/internal/storage"
	"voxform/mocks"
)

func TestAudioArchive_UploadsUnderSessionPrefix(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		body, _ := io.ReadAll(in.Body)
		return in.Bucket == "voxform-audio" &&
			strings.HasPrefix(in.Key, "audio/s1/") &&
			strings.HasSuffix(in.Key, ".mp3") &&
			in.ContentType == "audio/mpeg" &&
			in.Size == 3 &&
			string(body) == "abc"
	})).Return(&port.UploadOutput{Location: "s3://voxform-audio/x"}, nil)

	key, err := storage.NewAudioArchive(store, "voxform-audio").
		Archive(context.Background(), "s1", []byte("abc"), domain.AudioMP3)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "audio/s1/"))
	store.AssertExpectations(t)
}

func TestAudioArchive_UploadError(t *testing.T) {
	store := new(mocks.MockObjectStorage)
	store.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

	_, err := storage.NewAudioArchive(store, "b").Archive(context.Background(), "s1", []byte("abc"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestNoopArchive(t *testing.T) {
	key, err := storage.NewNoopArchive().Archive(context.Background(), "s1", []byte("abc"), domain.AudioWAV)
	require.NoError(t, err)
	assert.Empty(t, key)
}
