package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionKindReversible(t *testing.T) {
	reversible := []ActionKind{ActionLike, ActionDislike, ActionSave, ActionFollow}
	for _, kind := range reversible {
		assert.True(t, kind.Reversible(), "%s", kind)
	}

	repeatable := []ActionKind{ActionShare, ActionDownload}
	for _, kind := range repeatable {
		assert.False(t, kind.Reversible(), "%s", kind)
	}
}

func TestActionKindCounter(t *testing.T) {
	cases := map[ActionKind]Counter{
		ActionLike:     CounterLike,
		ActionDislike:  CounterDislike,
		ActionSave:     CounterSave,
		ActionFollow:   CounterFollow,
		ActionShare:    CounterShare,
		ActionDownload: CounterDownload,
	}
	for kind, want := range cases {
		counter, ok := kind.Counter()
		assert.True(t, ok, "%s", kind)
		assert.Equal(t, want, counter)
	}

	_, ok := ActionKind("poke").Counter()
	assert.False(t, ok)
	assert.False(t, ActionKind("poke").Valid())
}
