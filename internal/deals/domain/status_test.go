package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusOpen.Valid())
	assert.True(t, StatusWon.Valid())
	assert.True(t, StatusLost.Valid())
	assert.False(t, Status("pending").Valid())
}

func TestStatusClosed(t *testing.T) {
	assert.False(t, StatusOpen.Closed())
	assert.True(t, StatusWon.Closed())
	assert.True(t, StatusLost.Closed())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusOpen, StatusWon, true},
		{StatusOpen, StatusLost, true},
		{StatusWon, StatusOpen, true},
		{StatusLost, StatusOpen, true},
		{StatusWon, StatusLost, false},
		{StatusLost, StatusWon, false},
		{StatusOpen, StatusOpen, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
