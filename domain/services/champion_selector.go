package services

import (
	"github.com/Jabramco/memebase/domain/core/aggregates"
	"github.com/Jabramco/memebase/domain/core/entities"
	"github.com/Jabramco/memebase/domain/core/valueobjects"
)

// Champion is the meme of the week together with its weekly record
type Champion struct {
	Meme  entities.Meme              `json:"meme"`
	Stats entities.InteractionRecord `json:"stats"`
	Week  valueobjects.WeekID        `json:"week"`
}

// SelectChampion picks the highest-scoring meme of week from the ledger.
//
// Records are scanned in bucket insertion order against a running maximum
// that starts at zero, so only positive scores qualify and the first record
// reaching the maximum wins ties. The winner must be present in memes;
// otherwise there is no champion even if another record scored lower.
func SelectChampion(ledger *aggregates.InteractionLedger, week valueobjects.WeekID, memes []entities.Meme) *Champion {
	if ledger == nil {
		return nil
	}

	var (
		topID    string
		topStats entities.InteractionRecord
		highest  int
	)
	ledger.Bucket(week).Each(func(memeID string, rec entities.InteractionRecord) {
		if rec.TotalScore > highest {
			highest = rec.TotalScore
			topID = memeID
			topStats = rec
		}
	})
	if topID == "" {
		return nil
	}

	for _, m := range memes {
		if m.ID == topID {
			return &Champion{Meme: m, Stats: topStats, Week: week}
		}
	}
	return nil
}
