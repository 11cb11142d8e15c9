package store

// Session is the stored result of one completed render.
type Session struct {
	ID            string         `json:"id"`
	ChartHash     string         `json:"chart_hash"`
	Title         string         `json:"title"`
	Difficulty    string         `json:"difficulty"`
	Score         int            `json:"score"`
	MaxCombo      int            `json:"max_combo"`
	Percentage    float64        `json:"percentage"`
	Hits          map[string]int `json:"hits"` // accuracy name → count
	Seq           int64          `json:"seq"`  // completion seq from the engine clock
	EngineVersion string         `json:"engine_version"`
}

// Judgment is one committed judgment of a session.
type Judgment struct {
	SessionID string  `json:"session_id"`
	Seq       int64   `json:"seq"`
	EventID   int64   `json:"event_id"`
	Accuracy  string  `json:"accuracy"`
	Hits      int     `json:"hits"`
	Position  float64 `json:"position"`
	Latency   float64 `json:"latency"`
}
