// Package recordevents defines the topics and payloads published after a
// record is committed. Payloads are staged in the outbox alongside the
// record insert and relayed with at-least-once delivery; downstream
// processors own best/world-record flags and media hosting.
package recordevents

// Topics consumed by the downstream processors.
const (
	TopicRecordCreated = "record.created"
	TopicRecordMedia   = "record.media"
	TopicPersonalBest  = "record.pb"
	TopicWorldRecord   = "record.wr"
)

// RecordCreatedPayload announces a newly committed record.
type RecordCreatedPayload struct {
	RecordID int64 `json:"record_id"`
}

// RecordMediaPayload asks the media processor to host the run's ghost
// replay and screenshot.
type RecordMediaPayload struct {
	RecordID       int64  `json:"record_id"`
	GhostData      string `json:"ghost_data"`
	ScreenshotData string `json:"screenshot_data"`
}

// PersonalBestPayload asks the personal-best processor to evaluate the run.
type PersonalBestPayload struct {
	RecordID int64   `json:"record_id"`
	UserID   int64   `json:"user_id"`
	LevelID  int64   `json:"level_id"`
	Time     float64 `json:"time"`
}

// WorldRecordPayload asks the world-record processor to evaluate the run.
type WorldRecordPayload struct {
	RecordID int64   `json:"record_id"`
	UserID   int64   `json:"user_id"`
	LevelID  int64   `json:"level_id"`
	Time     float64 `json:"time"`
}
