package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jet/internal/config"
)

func TestToConfigFlags(t *testing.T) {
	f := Flags{
		TestPath:        "suite",
		Files:           []string{"test_a.go"},
		RunAll:          true,
		Workers:         3,
		LenientWarnings: true,
		Limit:           5,
		FailedColor:     "white",
		Background:      "black",
	}

	got := f.ToConfigFlags()

	assert.Equal(t, "suite", got.TestPath)
	assert.Equal(t, []string{"test_a.go"}, got.Files)
	assert.True(t, got.RunAll)
	assert.Equal(t, 3, got.Workers)
	assert.True(t, got.LenientWarnings)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, config.Colors{Failed: "white", Background: "black"}, got.Colors)
}
