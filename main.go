package main

import (
	"context"
	"os"

	"github.com/cdfmlr/crud/log"

	"audiolib/activitylog"
	"audiolib/analysis"
	"audiolib/audiofilestore"
	"audiolib/searchstore"
)

var logger = log.ZoneLogger("audiolib/main")

func main() {
	configPath := os.Getenv("AUDIOLIB_CONFIG")
	if configPath == "" {
		configPath = "audiolib.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("main: bad config")
	}

	store, err := searchstore.New(cfg.Elastic)
	if err != nil {
		logger.WithError(err).Fatal("main: search store init failed")
	}
	if err := store.EnsureIndex(context.Background()); err != nil {
		// the store answers reads with empty results until reindex
		logger.WithError(err).Error("main: index bootstrap failed")
	}

	asr := analysis.NewASRClient(cfg.Analysis.ASRServer)
	emotion := analysis.NewEmotionClient(cfg.Analysis.EmotionServer)

	pipeline := &analysis.Pipeline{
		Normalizer:  &analysis.FFmpegNormalizer{},
		Transcriber: asr,
		Classifier:  emotion,
		Keywords: analysis.WithKeywordFallback(
			&analysis.CommandKeywordExtractor{Command: cfg.Analysis.KeywordCommand}),
		Language: cfg.Analysis.Language,
		Policy: analysis.SelectorPolicy{
			Allowed:    analysis.DefaultSelectorPolicy().Allowed,
			MinScore:   cfg.Analysis.MinScore,
			MaxResults: cfg.Analysis.MaxEmotions,
		},
	}

	ctrl := &analyzeController{
		pipeline: pipeline,
		asr:      asr,
		emotion:  emotion,
	}

	r, api := MakeRouter(store, ctrl)

	files, err := audiofilestore.New(cfg.UploadDir, api)
	if err != nil {
		logger.WithError(err).Fatal("main: audio file store init failed")
	}
	ctrl.files = files

	if err := activitylog.Start(cfg.ActivityLog.DB, api); err != nil {
		logger.WithError(err).Fatal("main: activity log init failed")
	}

	// warm the models up in the background; requests arriving before
	// they are ready will await the same in-flight load
	go func() {
		if err := asr.WarmUp(context.Background()); err != nil {
			logger.WithError(err).Error("main: asr warm-up failed")
		}
	}()
	go func() {
		if err := emotion.WarmUp(context.Background()); err != nil {
			logger.WithError(err).Error("main: emotion warm-up failed")
		}
	}()

	if err := r.Run(cfg.HttpListenAddr); err != nil {
		logger.WithError(err).Fatal("main: server stopped")
	}
}
