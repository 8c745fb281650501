package call

import "time"

// MenuState tracks where a call sits inside the IVR menu.
type MenuState string

const (
	StateGreeting   MenuState = "greeting"
	StateRouted     MenuState = "routed"
	StateTerminated MenuState = "terminated"
)

// Status mirrors the transport's call lifecycle reporting.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusRinging    Status = "ringing"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusBusy       Status = "busy"
	StatusNoAnswer   Status = "no-answer"
)

// Terminal reports whether a status ends the call for good.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusBusy, StatusNoAnswer:
		return true
	}
	return false
}

// Session captures one phone call as it moves through the menu.
// Menu state only ever advances; status/duration updates arrive out of
// order from a separate event stream and overwrite without resetting it.
type Session struct {
	CallID          string    `json:"callId"`
	From            string    `json:"from"`
	To              string    `json:"to"`
	Menu            MenuState `json:"menu"`
	Status          Status    `json:"status"`
	DurationSeconds int       `json:"duration"`
	CreatedAt       time.Time `json:"createdAt"`
}
