package ingest_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisisdrill/internal/ingest"
)

var header = []string{"Horaire", "Type", "Émetteur", "Destinataire", "Stimuli", "ID", "Réaction attendue", "Commentaire"}

func Test_ParseScenario_builds_sorted_snapshot(t *testing.T) {
	parser := ingest.NewParser(time.UTC)

	table := [][]string{
		header,
		{"2031-05-01 09:10", "tweet", "@breaking", "", "Something happened", "", "", ""},
		{"2031-05-01 09:00", "Message", "HQ", "Legal", "Check the press release", "M1", "call PR", "sensitive"},
		{"2031-05-01 08:55", "message", "HQ", "Finance\nHR", "Budget freeze", "", "", ""},
		{"2031-05-01 09:05", "decompte", "HQ", "", "pause 10 min", "", "", ""},
		{"2031-05-01 09:20", "note", "HQ", "", "internal note rows are ignored", "", "", ""},
		{"2031-05-01 09:30", "message", "HQ", "tous", "All hands", "", "", ""},
	}

	snap, err := parser.ParseScenario(table)
	require.NoError(t, err)

	require.Len(t, snap.Tweets, 1)
	assert.Equal(t, "@breaking", snap.Tweets[0].Sender)
	assert.Contains(t, snap.Tweets[0].ID, "tw-")

	require.Len(t, snap.Messages, 3)
	for i := 1; i < len(snap.Messages); i++ {
		assert.False(t, snap.Messages[i].At.Before(snap.Messages[i-1].At), "messages out of order")
	}
	assert.Equal(t, []string{"Finance", "HR"}, snap.Messages[0].Destinations)
	assert.Equal(t, "M1", snap.Messages[1].ID)

	require.Len(t, snap.Countdowns, 1)
	w := snap.Countdowns[0]
	assert.Equal(t, 10, w.Minutes)
	assert.True(t, w.End.Equal(w.Start.Add(10*time.Minute)))

	assert.Equal(t, []string{"Finance", "HR", "Legal"}, snap.Roles, "broadcast marker must not become a role")

	meta, ok := snap.Meta["M1"]
	require.True(t, ok)
	assert.Equal(t, "call PR", meta.ExpectedReaction)
	assert.Equal(t, "sensitive", meta.Comment)
}

func Test_ParseScenario_rejects_countdown_without_minutes(t *testing.T) {
	parser := ingest.NewParser(time.UTC)

	table := [][]string{
		header,
		{"2031-05-01 09:00", "tweet", "@a", "", "one", "", "", ""},
		{"2031-05-01 09:01", "tweet", "@b", "", "two", "", "", ""},
		{"2031-05-01 09:02", "tweet", "@c", "", "three", "", "", ""},
		{"2031-05-01 09:05", "countdown", "HQ", "", "go now", "", "", ""},
	}

	_, err := parser.ParseScenario(table)
	require.Error(t, err)

	var rowErr *ingest.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 5, rowErr.Row)
	assert.Contains(t, err.Error(), "row 5")
}

func Test_ParseScenario_rejects_message_without_recipient(t *testing.T) {
	parser := ingest.NewParser(time.UTC)

	table := [][]string{
		header,
		{"2031-05-01 09:00", "message", "HQ", "", "orphan", "", "", ""},
	}

	_, err := parser.ParseScenario(table)
	var rowErr *ingest.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
}

func Test_ParseScenario_rejects_duplicate_message_id(t *testing.T) {
	parser := ingest.NewParser(time.UTC)

	table := [][]string{
		header,
		{"2031-05-01 09:00", "message", "HQ", "Legal", "first", "M1", "", ""},
		{"2031-05-01 09:10", "message", "HQ", "Finance", "second", "M1", "", ""},
	}

	_, err := parser.ParseScenario(table)
	require.Error(t, err)

	var rowErr *ingest.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Row)
	assert.Contains(t, err.Error(), `"M1"`)
}

func Test_ParseScenario_rejects_unparseable_time(t *testing.T) {
	parser := ingest.NewParser(time.UTC)

	table := [][]string{
		header,
		{"whenever", "tweet", "@a", "", "text", "", "", ""},
	}

	_, err := parser.ParseScenario(table)
	var rowErr *ingest.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
}

func Test_ParseScenario_empty_source(t *testing.T) {
	parser := ingest.NewParser(time.UTC)

	_, err := parser.ParseScenario(nil)
	assert.ErrorIs(t, err, ingest.ErrEmptySource)

	_, err = parser.ParseScenario([][]string{header})
	assert.ErrorIs(t, err, ingest.ErrEmptySource)
}

func Test_ParseScenario_missing_columns(t *testing.T) {
	parser := ingest.NewParser(time.UTC)

	table := [][]string{
		{"Horaire", "Émetteur", "Stimuli"},
		{"2031-05-01 09:00", "HQ", "text"},
	}

	_, err := parser.ParseScenario(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "type")
}

func Test_ParseTweets_tweet_only_source(t *testing.T) {
	parser := ingest.NewParser(time.UTC)

	table := [][]string{
		{"Time", "Sender", "Stimulus"},
		{"2031-05-01 09:10", "@late", "second"},
		{"", "", ""},
		{"2031-05-01 09:00", "@early", "first"},
	}

	tweets, err := parser.ParseTweets(table)
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, "@late", tweets[0].Sender, "tweet-only parse keeps row order; sorting happens in the snapshot")
	assert.Equal(t, "first", tweets[1].Text)
}
