package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusNew.Valid())
	assert.True(t, StatusContacted.Valid())
	assert.True(t, StatusQualified.Valid())
	assert.True(t, StatusDisqualified.Valid())
	assert.False(t, Status("converted").Valid())
	assert.False(t, Status("").Valid())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusContacted, true},
		{StatusNew, StatusQualified, true},
		{StatusNew, StatusDisqualified, true},
		{StatusContacted, StatusQualified, true},
		{StatusContacted, StatusNew, false},
		{StatusQualified, StatusDisqualified, true},
		{StatusQualified, StatusNew, false},
		{StatusDisqualified, StatusContacted, true},
		{StatusDisqualified, StatusQualified, false},
		{StatusNew, StatusNew, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
