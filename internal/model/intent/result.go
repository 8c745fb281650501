package intent

import "time"

// Label is a coarse category describing what a customer message is about.
type Label string

const (
	Rezervare   Label = "rezervare"
	Pret        Label = "pret"
	Modificare  Label = "modificare"
	Anulare     Label = "anulare"
	GeneralInfo Label = "info_general"
	Fallback    Label = "fallback"
)

// Result is the outcome of one classification attempt, immutable once stored.
// Success is false only when the classifier service failed and the canned
// fallback reply was substituted.
type Result struct {
	MessageID  string    `json:"messageId"`
	Label      Label     `json:"label"`
	Confidence float64   `json:"confidence"`
	Reply      string    `json:"reply"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	Success    bool      `json:"success"`
}
