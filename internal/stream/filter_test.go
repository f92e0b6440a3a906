package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crisisdrill/internal/stream"
)

func Test_Visible(t *testing.T) {
	cases := []struct {
		name         string
		destinations []string
		role         string
		want         bool
	}{
		{"empty role sees everything", []string{"Legal"}, "", true},
		{"exact match", []string{"Finance", "HR"}, "Finance", true},
		{"second entry matches", []string{"Finance", "HR"}, "HR", true},
		{"no match", []string{"Finance", "HR"}, "Legal", false},
		{"case sensitive roles", []string{"Finance"}, "finance", false},
		{"broadcast french", []string{"tous"}, "Legal", true},
		{"broadcast english", []string{"ALL"}, "Legal", true},
		{"broadcast case insensitive", []string{"Tous"}, "Legal", true},
		{"untrimmed entries", []string{" Finance "}, "Finance", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stream.Visible(tc.destinations, tc.role))
		})
	}
}
