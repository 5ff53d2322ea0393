package models

import "time"

const SettingsID = "singleton"

type Settings struct {
	ID              string  `db:"id" json:"-"`
	CurrentSemester int     `db:"current_semester" json:"currentSemester" validate:"min=1,max=10"`
	CurrentMomento  Momento `db:"current_momento" json:"currentMomento"`
	StudentName     *string `db:"student_name" json:"studentName,omitempty"`
}

// DefaultSettings is what views fall back to before the singleton row exists.
func DefaultSettings() *Settings {
	return &Settings{
		ID:              SettingsID,
		CurrentSemester: 1,
		CurrentMomento:  MomentoI,
	}
}

func (s *Settings) Validate() error {
	return validate.Struct(s)
}

// SessionInfo describes a login session tracked in redis.
type SessionInfo struct {
	Token           string    `json:"token"`
	RequestCount    int       `json:"request_count"`
	LastRequestTime time.Time `json:"last_request_dttm_utc"`
	CreatedTime     time.Time `json:"created_dttm_utc"`
}
