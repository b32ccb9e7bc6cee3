package models

import "time"

// Platform names the messenger a peer talks through.
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformVK       Platform = "vk"
)

// Peer is the persisted conversation state of a single messenger user.
// SelectedSchedule is empty until the user successfully picks a schedule;
// SelectingSchedule means the next utterance is read as a schedule change.
type Peer struct {
	Platform             Platform     `db:"platform"`
	ChatID               int64        `db:"chat_id"`
	SelectedSchedule     string       `db:"selected_schedule"`
	SelectedScheduleType ScheduleType `db:"selected_schedule_type"`
	SelectingSchedule    bool         `db:"selecting_schedule"`
	CreatedAt            time.Time    `db:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at"`
}

// HasSchedule reports whether the peer ever completed a schedule choice.
func (p *Peer) HasSchedule() bool {
	return p.SelectedSchedule != ""
}
