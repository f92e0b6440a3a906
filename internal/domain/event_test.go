package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crisisdrill/internal/domain"
)

func Test_SplitDestinations(t *testing.T) {
	assert.Equal(t, []string{"Finance", "HR"}, domain.SplitDestinations("Finance\nHR"))
	assert.Equal(t, []string{"Legal"}, domain.SplitDestinations("  Legal  "))
	assert.Nil(t, domain.SplitDestinations("\n \n"))
}

func Test_IsBroadcast(t *testing.T) {
	assert.True(t, domain.IsBroadcast("ALL"))
	assert.True(t, domain.IsBroadcast("all"))
	assert.True(t, domain.IsBroadcast("Tous"))
	assert.True(t, domain.IsBroadcast(" tous "))
	assert.False(t, domain.IsBroadcast("Legal"))
}

func Test_CountdownWindow_Contains(t *testing.T) {
	start := time.Date(2031, time.May, 1, 9, 0, 0, 0, time.UTC)
	w := domain.CountdownWindow{Start: start, End: start.Add(10 * time.Minute), Minutes: 10}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(9*time.Minute)))
	assert.False(t, w.Contains(start.Add(10*time.Minute)))
	assert.False(t, w.Contains(start.Add(-time.Second)))
}
