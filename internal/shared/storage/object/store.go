package object

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"resume-bot/internal/shared/util"
)

// ObjectStore saves uploaded documents and reads them back by storage key.
type ObjectStore interface {
	Save(ctx context.Context, key string, contentType string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// UploadKey builds the storage key of an upload: <uid>/<UTC stamp>_<digest><ext>.
func UploadKey(userID int64, fileName string, data []byte, now time.Time) string {
	stamp := now.UTC().Format("20060102T150405")
	return path.Join(fmt.Sprint(userID), stamp+"_"+util.ShortDigest(data)+util.SafeExtension(fileName))
}

// SaveUpload stores data under its UploadKey and returns the key.
func SaveUpload(ctx context.Context, store ObjectStore, userID int64, fileName, contentType string, data []byte, now time.Time) (string, error) {
	key := UploadKey(userID, fileName, data, now)
	if err := store.Save(ctx, key, contentType, data); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return key, nil
}
