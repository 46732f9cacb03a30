package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTargets(t *testing.T) {
	targets := buildTargets([]string{"vendor", "node_modules", ""}, []string{"target", "vendor"})

	assert.Contains(t, targets, "node_modules")
	assert.Equal(t, "node", targets["node_modules"].Category, "includes keep known categories")
	assert.NotContains(t, targets, "target")
	assert.NotContains(t, targets, "vendor", "exclude wins over include")

	custom := buildTargets([]string{".cache"}, nil)
	assert.Equal(t, TargetDef{Name: ".cache", Category: "custom"}, custom[".cache"])
	assert.Len(t, custom, len(defaultTargets)+1)
}

func TestParseTargetList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, parseTargetList(" a, b ", "", "c,,"))
	assert.Nil(t, parseTargetList())
}

func TestSortedTargetNames(t *testing.T) {
	names := sortedTargetNames(map[string]TargetDef{"b": {}, "a": {}, "c": {}})
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestListTargetsCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{t.TempDir(), "--list-targets", "--include", "vendor", "--exclude", "target"})

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, len(defaultTargets))
	assert.Contains(t, out.String(), "vendor")
	assert.Contains(t, out.String(), "custom")
	assert.NotContains(t, out.String(), "target ")
}
