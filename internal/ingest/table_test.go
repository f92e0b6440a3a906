package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crisisdrill/internal/ingest"
)

func Test_ReadTable_csv_comma(t *testing.T) {
	src := "time,type,sender,stimulus\n09:00,tweet,@a,hello\n"

	rows, err := ingest.ReadTable(strings.NewReader(src), "plan.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"09:00", "tweet", "@a", "hello"}, rows[1])
}

func Test_ReadTable_csv_semicolon(t *testing.T) {
	src := "time;type;sender;stimulus\n09:00;tweet;@a;hello, world\n"

	rows, err := ingest.ReadTable(strings.NewReader(src), "plan.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "hello, world", rows[1][3])
}

func Test_ReadTable_rejects_unknown_extension(t *testing.T) {
	_, err := ingest.ReadTable(strings.NewReader("x"), "plan.pdf")
	assert.Error(t, err)
}
