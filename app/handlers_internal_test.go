package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type commandNameInput struct{}

func TestCommandName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "app.commandNameInput", commandName(commandNameInput{}))
	assert.Equal(t, "<nil>", commandName(nil))
}
