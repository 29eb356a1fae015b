package models

import (
	"encoding/json"
	"time"
)

// Validation bounds for post fields, applied after trimming whitespace.
const (
	TitleMinLen   = 5
	TitleMaxLen   = 255
	ContentMinLen = 10
	ContentMaxLen = 500
)

// Timestamp serializes a time as {"timestamp": <epoch seconds>}, the shape
// the web and CLI clients consume.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp int64 `json:"timestamp"`
	}{Timestamp: t.Unix()})
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var wire struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	t.Time = time.Unix(wire.Timestamp, 0).UTC()
	return nil
}

type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	Author    Author    `json:"author"`
}
