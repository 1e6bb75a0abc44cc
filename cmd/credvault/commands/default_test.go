package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cverrors "github.com/systmms/credvault/internal/errors"
)

func TestDefaultCommand_SetAndShow(t *testing.T) {
	app, _ := newTestApp(t)
	seedAPIKeyProfile(t, app, "work", testAPIKey)

	_, err := runCommand(t, NewDefaultCommand(app), "work")
	require.NoError(t, err)

	out, err := runCommand(t, NewDefaultCommand(app))
	require.NoError(t, err)
	assert.Equal(t, "work\n", out)
}

func TestDefaultCommand_ShowUnset(t *testing.T) {
	app, _ := newTestApp(t)

	out, err := runCommand(t, NewDefaultCommand(app))
	require.NoError(t, err)
	assert.Contains(t, out, "No default profile set")
}

func TestDefaultCommand_SetUnknown(t *testing.T) {
	app, _ := newTestApp(t)

	_, err := runCommand(t, NewDefaultCommand(app), "ghost")
	var notFound cverrors.ProfileNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDefaultCommand_Clear(t *testing.T) {
	app, _ := newTestApp(t)
	seedAPIKeyProfile(t, app, "work", testAPIKey)
	require.NoError(t, app.Store().SetDefault("work"))

	_, err := runCommand(t, NewDefaultCommand(app), "--clear")
	require.NoError(t, err)

	def, err := app.Store().Default()
	require.NoError(t, err)
	assert.Empty(t, def)
}
