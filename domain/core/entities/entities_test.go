package entities

import (
	"testing"

	"github.com/Jabramco/memebase/domain/core/valueobjects"
	"github.com/stretchr/testify/assert"
)

func TestInteractionRecord_Apply(t *testing.T) {
	var rec InteractionRecord

	rec.Apply(valueobjects.KindView)
	rec.Apply(valueobjects.KindView)
	rec.Apply(valueobjects.KindCopy)

	assert.Equal(t, InteractionRecord{Views: 2, Copies: 1, Clicks: 0, TotalScore: 5}, rec)

	rec.Apply(valueobjects.KindClick)
	assert.Equal(t, 7, rec.TotalScore)
	assert.Equal(t, rec.Score(), rec.TotalScore)
}

func TestInteractionRecord_Normalize(t *testing.T) {
	rec := InteractionRecord{Views: -3, Copies: 2, Clicks: 1, TotalScore: 999}
	rec.Normalize()
	assert.Equal(t, InteractionRecord{Views: 0, Copies: 2, Clicks: 1, TotalScore: 8}, rec)
}

func TestMeme_Matches(t *testing.T) {
	m := Meme{Title: "Distracted Boyfriend", Keywords: []string{"classic", "Stock Photo"}}

	tests := []struct {
		term string
		want bool
	}{
		{term: "", want: true},
		{term: "   ", want: true},
		{term: "boyfriend", want: true},
		{term: "DISTRACTED", want: true},
		{term: "stock", want: true},
		{term: "cat", want: false},
		// the term is not trimmed before matching
		{term: "boyfriend ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Matches(tt.term))
		})
	}
}

func TestMeme_IsLocal(t *testing.T) {
	assert.True(t, Meme{ImageURL: "data:image/png;base64,AAAA"}.IsLocal())
	assert.False(t, Meme{ImageURL: "https://cdn.example.com/memes/1_a.png"}.IsLocal())
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"cat", "funny", "monday"}, ParseKeywords(" cat, funny ,,monday, "))
	assert.Empty(t, ParseKeywords(" , "))
	assert.Empty(t, ParseKeywords(""))
}

func TestFilterMemes(t *testing.T) {
	memes := []Meme{
		{ID: "1", Title: "Cat"},
		{ID: "2", Title: "Dog", Keywords: []string{"doggo"}},
		{ID: "3", Title: "Catapult"},
	}
	got := FilterMemes(memes, "cat")
	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
	assert.Len(t, FilterMemes(memes, ""), 3)
}
