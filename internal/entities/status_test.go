package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"MANAGER", "ZAMIR", "ZAVOD", "USTANOVCHIK", "DONE", "CANCEL"} {
		status, err := ParseStatus(raw)
		assert.NoError(t, err)
		assert.Equal(t, Status(raw), status)
	}

	_, err := ParseStatus("manager")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusDone.IsTerminal())
	assert.True(t, StatusCancel.IsTerminal())
	assert.False(t, StatusManager.IsTerminal())
	assert.False(t, StatusZamir.IsTerminal())
	assert.False(t, StatusZavod.IsTerminal())
	assert.False(t, StatusUstanovchik.IsTerminal())
}

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"ADMIN", "MANAGER", "ZAMIR", "USTANOVCHIK", "ZAVOD"} {
		role, err := ParseRole(raw)
		assert.NoError(t, err)
		assert.Equal(t, Role(raw), role)
	}

	_, err := ParseRole("SUPERVISOR")
	assert.Error(t, err)
}

func TestRoleWorkStage(t *testing.T) {
	assert.Equal(t, StatusZamir, RoleZamir.WorkStage())
	assert.Equal(t, StatusZavod, RoleZavod.WorkStage())
	assert.Equal(t, StatusUstanovchik, RoleUstanovchik.WorkStage())
	assert.Equal(t, Status(""), RoleAdmin.WorkStage())
	assert.Equal(t, Status(""), RoleManager.WorkStage())
}

func TestRoleKind(t *testing.T) {
	assert.True(t, RoleAdmin.IsPrivileged())
	assert.True(t, RoleManager.IsPrivileged())
	assert.False(t, RoleZamir.IsPrivileged())

	assert.True(t, RoleZamir.IsWorker())
	assert.True(t, RoleZavod.IsWorker())
	assert.True(t, RoleUstanovchik.IsWorker())
	assert.False(t, RoleAdmin.IsWorker())
	assert.False(t, RoleManager.IsWorker())
}
