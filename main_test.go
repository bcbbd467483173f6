package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zverik/cli-oauth2/cmd"
)

func TestVersionIsPassedToCommands(t *testing.T) {
	assert.Equal(t, "dev", version)

	original := cmd.GetVersion()
	defer cmd.SetVersion(original)

	for _, v := range []string{"dev", "1.0.0", "v2.0.0-rc1"} {
		cmd.SetVersion(v)
		assert.Equal(t, v, cmd.GetVersion())
	}
}
