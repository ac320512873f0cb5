package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusReviewing, StatusApproved, StatusMigrated, StatusRejected} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("deleted").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:   {StatusReviewing, StatusApproved, StatusRejected},
		StatusReviewing: {StatusApproved, StatusRejected},
		StatusApproved:  {StatusApproved, StatusMigrated},
		StatusMigrated:  {},
		StatusRejected:  {},
	}
	all := []Status{StatusPending, StatusReviewing, StatusApproved, StatusMigrated, StatusRejected}

	for from, tos := range allowed {
		ok := make(map[Status]bool)
		for _, to := range tos {
			ok[to] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusMigrated.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusReviewing.Terminal())
	assert.False(t, StatusApproved.Terminal())
}
