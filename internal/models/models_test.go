package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RolePlayer, RoleMaster, RoleSuper, RolePowerhouse} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestMessageBetween(t *testing.T) {
	m := Message{SenderID: 1, ReceiverID: 2}
	assert.True(t, m.Between(1, 2))
	assert.True(t, m.Between(2, 1))
	assert.False(t, m.Between(1, 3))
	assert.False(t, m.Between(3, 2))
}
