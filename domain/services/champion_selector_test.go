package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jabramco/memebase/domain/core/aggregates"
	"github.com/Jabramco/memebase/domain/core/entities"
	"github.com/Jabramco/memebase/domain/core/valueobjects"
)

const week = valueobjects.WeekID("2024-W10")

func memes(ids ...string) []entities.Meme {
	out := make([]entities.Meme, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.Meme{ID: id, Title: "meme " + id})
	}
	return out
}

func TestSelectChampion_NoInteractions(t *testing.T) {
	assert.Nil(t, SelectChampion(aggregates.NewInteractionLedger(), week, memes("a")))
	assert.Nil(t, SelectChampion(nil, week, memes("a")))
}

func TestSelectChampion_HighestScoreWins(t *testing.T) {
	ledger := aggregates.NewInteractionLedger()
	ledger.Record(week, "a", valueobjects.KindView)
	ledger.Record(week, "b", valueobjects.KindCopy)
	ledger.Record(week, "c", valueobjects.KindClick)
	ledger.Record("2024-W9", "a", valueobjects.KindCopy)
	ledger.Record("2024-W9", "a", valueobjects.KindCopy)

	champ := SelectChampion(ledger, week, memes("a", "b", "c"))
	require.NotNil(t, champ)
	assert.Equal(t, "b", champ.Meme.ID)
	assert.Equal(t, entities.InteractionRecord{Copies: 1, TotalScore: 3}, champ.Stats)
	assert.Equal(t, week, champ.Week)
}

func TestSelectChampion_FirstMaximumWinsTies(t *testing.T) {
	ledger, err := aggregates.ParseLedger([]byte(`{"2024-W10":{
		"b":{"views":0,"copies":0,"clicks":1,"totalScore":2},
		"a":{"views":2,"copies":0,"clicks":0,"totalScore":2}
	}}`))
	require.NoError(t, err)

	champ := SelectChampion(ledger, week, memes("a", "b"))
	require.NotNil(t, champ)
	assert.Equal(t, "b", champ.Meme.ID)
}

func TestSelectChampion_WinnerMissingFromCollection(t *testing.T) {
	ledger := aggregates.NewInteractionLedger()
	ledger.Record(week, "deleted", valueobjects.KindCopy)
	ledger.Record(week, "kept", valueobjects.KindView)

	assert.Nil(t, SelectChampion(ledger, week, memes("kept")))
}

func TestSelectChampion_ZeroScoresDoNotQualify(t *testing.T) {
	ledger, err := aggregates.ParseLedger([]byte(`{"2024-W10":{"a":{"views":0,"copies":0,"clicks":0,"totalScore":0}}}`))
	require.NoError(t, err)

	assert.Nil(t, SelectChampion(ledger, week, memes("a")))
}
