package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/industrialmelee/extension/internal/config"
	"github.com/industrialmelee/extension/pkg/hostbridge"
)

func TestRun_AnswersCalls(t *testing.T) {
	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"storage": {"type": "memory", "memory": {"outputDir": "` + dir + `", "compressOutput": false}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0644))

	in := strings.NewReader(strings.Join([]string{
		":VERSION:",
		":NEW:ACTOR:|pawn1|true|PlayerColony|1|0|0",
		"",
		":EQUIP:|pawn1|IM_ImpactBow",
		":ABILITY:TOGGLE:|pawn1|ExplosiveArrows",
		":SAVE:|pawn1",
		":NOPE:",
	}, "\n"))
	var out bytes.Buffer

	err := run([]string{"--config-dir", dir, "--logs-dir", filepath.Join(dir, "logs")}, in, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, `["ok", ["`+CurrentExtensionVersion+`","`+BuildDate+`"]]`, lines[0])
	assert.Equal(t, `["ok", "pawn1"]`, lines[1])
	assert.Equal(t, `["ok", "ImpactBow"]`, lines[2])
	assert.Equal(t, `["ok", true]`, lines[3])
	assert.Equal(t, `["ok"]`, lines[4])
	assert.True(t, strings.HasPrefix(lines[5], `["error"`), lines[5])

	assert.FileExists(t, filepath.Join(dir, "industrial_melee.json"))
	logs, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	var out bytes.Buffer
	assert.NoError(t, serve(ctx, hostbridge.New(nil, "", ""), r, &out))
	assert.Empty(t, out.String())
}
