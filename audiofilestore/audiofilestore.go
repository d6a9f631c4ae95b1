// Package audiofilestore retains uploaded originals in a local
// directory for later playback.
//
// Exposure an AudioFileStore with the following methods:
//   - SaveUpload: store an uploaded file under a fresh token name
//   - Path / URL: locate a stored file on disk / over HTTP
//   - Remove: drop a stored file (rollback path)
//
// Exposure Routes:
//   - /audio/:filename: ranged audio streaming
package audiofilestore

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/cdfmlr/crud/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var logger = log.ZoneLogger("audiolib/audiofilestore")

func init() {
	logger.Logger.SetLevel(logrus.InfoLevel)
}

// AudioFileStore stores retained originals in a local directory.
type AudioFileStore struct {
	FileDir string
}

func New(fileDir string, router gin.IRouter) (*AudioFileStore, error) {
	if err := os.MkdirAll(fileDir, 0o755); err != nil {
		return nil, fmt.Errorf("audiofilestore.New: %w", err)
	}

	a := &AudioFileStore{FileDir: fileDir}
	a.registerRoutes(router)
	return a, nil
}

// SaveUpload stores the uploaded file under a token name (original
// extension kept, original name dropped) and returns that stored name.
func (a *AudioFileStore) SaveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	storedName := uuid.NewString() + filepath.Ext(file.Filename)

	if err := c.SaveUploadedFile(file, a.Path(storedName)); err != nil {
		return "", fmt.Errorf("SaveUpload: %w", err)
	}

	logger.WithField("file", file.Filename).
		WithField("stored", storedName).
		Info("SaveUpload: original retained")

	return storedName, nil
}

// Path returns the on-disk location of a stored file.
func (a *AudioFileStore) Path(storedName string) string {
	return filepath.Join(a.FileDir, storedName)
}

// URL returns the server-relative path persisted on documents as
// storedPath.
func (a *AudioFileStore) URL(storedName string) string {
	return "uploads/" + storedName
}

// Remove deletes a stored file. Used to roll back failed analyses.
func (a *AudioFileStore) Remove(storedName string) {
	if err := os.Remove(a.Path(storedName)); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).WithField("stored", storedName).
			Warn("Remove: could not delete stored file")
	}
}
