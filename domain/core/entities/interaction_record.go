package entities

import "github.com/Jabramco/memebase/domain/core/valueobjects"

// Fixed interaction weights of the popularity score
const (
	ViewWeight  = 1
	CopyWeight  = 3
	ClickWeight = 2
)

// InteractionRecord holds one meme's interaction counts for one week.
// TotalScore is always derived from the counters, never incremented on its own.
type InteractionRecord struct {
	Views      int `json:"views"`
	Copies     int `json:"copies"`
	Clicks     int `json:"clicks"`
	TotalScore int `json:"totalScore"`
}

// Apply increments the counter matching kind and recomputes the score
func (r *InteractionRecord) Apply(kind valueobjects.InteractionKind) {
	switch kind {
	case valueobjects.KindView:
		r.Views++
	case valueobjects.KindCopy:
		r.Copies++
	case valueobjects.KindClick:
		r.Clicks++
	}
	r.TotalScore = r.Score()
}

// Score computes the weighted popularity score from the counters
func (r InteractionRecord) Score() int {
	return r.Views*ViewWeight + r.Copies*CopyWeight + r.Clicks*ClickWeight
}

// Normalize clamps negative counters to zero and recomputes the score.
// Used on records read back from storage.
func (r *InteractionRecord) Normalize() {
	if r.Views < 0 {
		r.Views = 0
	}
	if r.Copies < 0 {
		r.Copies = 0
	}
	if r.Clicks < 0 {
		r.Clicks = 0
	}
	r.TotalScore = r.Score()
}
