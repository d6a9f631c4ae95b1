package searchstore

// indexMapping is the persisted document shape: full-text search on
// transcript/filename/keywords, exact-match filtering on emotion labels
// and genre, numeric aggregation on confidence, chronological sort on
// timestamp.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "analysis": {
      "analyzer": {
        "default": { "type": "standard" }
      }
    }
  },
  "mappings": {
    "properties": {
      "fileName":       { "type": "text" },
      "storedFileName": { "type": "keyword" },
      "storedPath":     { "type": "keyword" },
      "transcription":  { "type": "text" },
      "confidence":     { "type": "integer" },
      "keywords":       { "type": "text" },
      "emotions":       { "type": "keyword" },
      "primaryEmotions": { "type": "keyword" },
      "scores":         { "type": "object" },
      "timestamp":      { "type": "date" },
      "trackId":        { "type": "keyword" },
      "title":          { "type": "text" },
      "artist":         { "type": "text" },
      "album":          { "type": "text" },
      "genre":          { "type": "keyword" },
      "duration":       { "type": "float" },
      "bitRate":        { "type": "integer" }
    }
  }
}`
