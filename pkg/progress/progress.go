package progress

import "time"

// Progress is the persisted record of where a user is within a story
// and their mistake history, keyed by (user, story). It is created on
// first play, updated after every answer event and scene transition,
// and read back to offer "continue or restart".
type Progress struct {
	UserID           string            `json:"user_id"`
	StoryID          string            `json:"story_id"`
	CurrentSceneID   string            `json:"current_scene_id"`
	MistakeCount     int               `json:"mistake_count"`
	QuestionMistakes map[string]int    `json:"question_mistakes,omitempty"` // Keyed by question ID
	AnswerStates     map[string]string `json:"answer_states,omitempty"`     // Keyed by question ID, engine-specific state blob
	PointsEarned     int               `json:"points_earned"`
	StartedAt        time.Time         `json:"started_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// New returns a zeroed progress record for (user, story).
func New(userID, storyID string) *Progress {
	return &Progress{
		UserID:           userID,
		StoryID:          storyID,
		QuestionMistakes: make(map[string]int),
		AnswerStates:     make(map[string]string),
		StartedAt:        time.Now(),
	}
}

// Snapshot is the check/continue/restart response shape.
type Snapshot struct {
	HasExistingProgress bool              `json:"has_existing_progress"`
	CurrentSceneID      string            `json:"current_scene_id,omitempty"`
	MistakeCount        int               `json:"mistake_count"`
	QuestionMistakes    map[string]int    `json:"question_mistakes,omitempty"`
	AnswerStates        map[string]string `json:"answer_states,omitempty"`
	PointsEarned        int               `json:"points_earned"`
}

// SnapshotOf converts a stored record into the wire snapshot.
func SnapshotOf(p *Progress) Snapshot {
	if p == nil {
		return Snapshot{}
	}
	return Snapshot{
		HasExistingProgress: p.CurrentSceneID != "",
		CurrentSceneID:      p.CurrentSceneID,
		MistakeCount:        p.MistakeCount,
		QuestionMistakes:    p.QuestionMistakes,
		AnswerStates:        p.AnswerStates,
		PointsEarned:        p.PointsEarned,
	}
}

// SceneSave is the save-scene-progress request body. SaveWrongAnswer
// uses the same shape with PointsEarned forced to zero.
type SceneSave struct {
	UserID           string            `json:"user_id"`
	StoryID          string            `json:"story_id"`
	SceneID          string            `json:"scene_id"`
	PointsEarned     int               `json:"points_earned"`
	MistakeCount     int               `json:"mistake_count"`
	QuestionMistakes map[string]int    `json:"question_mistakes,omitempty"`
	AnswerStates     map[string]string `json:"answer_states,omitempty"`
}

// Attempt is a completed playthrough record with the final score, used
// for match history.
type Attempt struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	StoryID            string    `json:"story_id"`
	Score              int       `json:"score"`
	TotalPossibleScore int       `json:"total_possible_score"`
	StartedAt          time.Time `json:"start_attempt_date"`
	EndedAt            time.Time `json:"end_attempt_date"`
}
