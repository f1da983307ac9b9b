package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	assert.Equal(t, &Run{ExitOnError: true}, got)
	assert.True(t, got.Interactive())
}

func TestInteractive(t *testing.T) {
	var nilRun *Run
	assert.False(t, nilRun.Interactive())
	assert.False(t, (&Run{LogFile: "/tmp/formulabar.log"}).Interactive())
}

func TestBinaryName(t *testing.T) {
	assert.Equal(t, "formulabar", CliBinaryName)
	assert.NotEmpty(t, VersionInformation.BuildVersion)
}
