package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestString(t *testing.T) {
	s := String()
	assert.Contains(t, s, ApplicationName)
	assert.Contains(t, s, Version)
}

func TestShort(t *testing.T) {
	s := Short()
	assert.Contains(t, s, ApplicationName)
	assert.Contains(t, s, Version)
}

func TestJSON(t *testing.T) {
	var info Info
	require.NoError(t, json.Unmarshal([]byte(JSON()), &info))
	assert.Equal(t, Version, info.Version)
}
