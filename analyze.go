package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"audiolib/activitylog"
	"audiolib/analysis"
	"audiolib/audiofilestore"
	"audiolib/model"
)

// this file implements the controller for the analyze pipeline.

type analyzeController struct {
	pipeline *analysis.Pipeline
	files    *audiofilestore.AudioFileStore

	asr     *analysis.ASRClient
	emotion *analysis.EmotionClient
}

func (ctrl *analyzeController) registerRoutes(r gin.IRouter) {
	r.POST("/analyze", ctrl.postAnalyze)
	r.POST("/models/retry", ctrl.postModelsRetry)
}

// postAnalyze handles: POST /api/analyze
//
// Body: multipart/form-data with one field:
//
//   - file: the audio file, e.g. curl -F 'file=@track.mp3'
//
// The original is retained for playback; the response is the pre-save
// document (persist it with POST /api/save).
func (ctrl *analyzeController) postAnalyze(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		// no file supplied: client error, no side effects
		c.JSON(http.StatusBadRequest, gin.H{"message": "Aucun fichier n'a été envoyé."})
		return
	}

	storedName, err := ctrl.files.SaveUpload(c, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	doc, err := ctrl.pipeline.Analyze(c, ctrl.files.Path(storedName), file.Filename)
	if err != nil {
		ctrl.files.Remove(storedName) // rollback

		activitylog.Record(c, "error", "analyze", file.Filename, "", err.Error())

		status := http.StatusInternalServerError
		var normErr *analysis.NormalizationError
		if errors.As(err, &normErr) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	doc.StoredFileName = storedName
	doc.StoredPath = ctrl.files.URL(storedName)
	model.MergeMediaMetadata(doc, file.Filename, ctrl.files.Path(storedName))

	activitylog.Record(c, "info", "analyze", file.Filename, "", "")
	c.JSON(http.StatusOK, doc)
}

// postModelsRetry handles: POST /api/models/retry
//
// Re-arms model initialization after a failed load. Harmless when the
// models are healthy.
func (ctrl *analyzeController) postModelsRetry(c *gin.Context) {
	ctrl.asr.Retry()
	ctrl.emotion.Retry()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
