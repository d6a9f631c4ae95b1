package main

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"audiolib/searchstore"
)

type AudiolibConfig struct {
	HttpListenAddr string
	UploadDir      string

	Elastic     searchstore.Config
	Analysis    AnalysisConfig
	ActivityLog ActivityLogConfig
}

type AnalysisConfig struct {
	// ASRServer and EmotionServer are the model sidecar addresses.
	ASRServer     string
	EmotionServer string

	// Language is the fixed locale hint handed to the transcriber.
	Language string

	// MinScore (inclusive) and MaxEmotions bound the primary emotion
	// set of every document.
	MinScore    float64
	MaxEmotions int

	// KeywordCommand is the argv of the keyphrase subprocess.
	KeywordCommand []string
}

type ActivityLogConfig struct {
	DB string
}

func DefaultConfig() *AudiolibConfig {
	return &AudiolibConfig{
		HttpListenAddr: ":3000",
		UploadDir:      "uploads",
		Elastic: searchstore.Config{
			Node:  "http://localhost:9200",
			Index: "audio_analysis",
		},
		Analysis: AnalysisConfig{
			ASRServer:      "http://localhost:8000/",
			EmotionServer:  "http://localhost:8001/",
			Language:       "fr",
			MinScore:       0.5,
			MaxEmotions:    3,
			KeywordCommand: []string{"python3", "keyword_service.py"},
		},
		ActivityLog: ActivityLogConfig{DB: "audiolib.db"},
	}
}

// LoadConfig reads the yaml config at path on top of the defaults.
// A missing file just means defaults. A few knobs can be overridden by
// env afterwards.
func LoadConfig(path string) (*AudiolibConfig, error) {
	c := DefaultConfig()

	if path != "" {
		fd, err := os.Open(path)
		if err == nil {
			defer fd.Close()
			if err := yaml.NewDecoder(fd).Decode(c); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if node := os.Getenv("ES_NODE"); node != "" {
		c.Elastic.Node = node
	}
	if key := os.Getenv("ES_API_KEY"); key != "" {
		c.Elastic.APIKey = key
	}
	if asr := os.Getenv("ASR_SERVER"); asr != "" {
		c.Analysis.ASRServer = asr
	}
	if emo := os.Getenv("EMOTION_SERVER"); emo != "" {
		c.Analysis.EmotionServer = emo
	}

	return c, nil
}

func (c *AudiolibConfig) Write(dst io.Writer) error {
	return yaml.NewEncoder(dst).Encode(&c)
}
