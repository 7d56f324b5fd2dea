package config

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/content-agents/schema"
)

const agentsYAML = `
writer:
  role: Writer on {subject}
  goal: Write
  backstory: Seasoned writer
  tools: [search]
editor:
  role: Editor
  goal: Edit
  backstory: Careful editor
  temperature: 0.2
`

const tasksYAML = `
draft:
  description: Draft about {subject}
  expected_output: A draft
  agent: writer
review:
  description: Review the draft
  expected_output: A final article
  agent: editor
  context: [draft]
  output_schema: article
`

func TestLoadFS(t *testing.T) {
	cfg, err := LoadFS(fstest.MapFS{
		AgentsFile: {Data: []byte(agentsYAML)},
		TasksFile:  {Data: []byte(tasksYAML)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"writer", "editor"}, cfg.Agents.Names())
	assert.Equal(t, []string{"draft", "review"}, cfg.Tasks.Names())

	writer, err := cfg.Agents.Lookup("writer")
	require.NoError(t, err)
	assert.Equal(t, []string{"search"}, writer.Tools)
	editor, _ := cfg.Agents.Lookup("editor")
	require.NotNil(t, editor.Temperature)
	assert.InDelta(t, 0.2, *editor.Temperature, 1e-6)

	review, err := cfg.Tasks.Lookup("review")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft"}, review.Context)
	assert.Equal(t, "article", review.OutputSchema)

	_, err = cfg.Agents.Lookup("market_news_monitor_agent")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, AgentsFile), []byte(agentsYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TasksFile), []byte(tasksYAML), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Tasks.Len())

	agents, err := LoadAgents(filepath.Join(dir, AgentsFile))
	require.NoError(t, err)
	assert.Equal(t, 2, agents.Len())
	tasks, err := LoadTasks(filepath.Join(dir, TasksFile))
	require.NoError(t, err)
	assert.Equal(t, 2, tasks.Len())

	_, err = Load(t.TempDir())
	assert.Error(t, err)
}

func TestParseFailsLoudly(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing goal", "writer:\n  role: Writer\n  backstory: b\n"},
		{"unknown field", "writer:\n  role: r\n  goal: g\n  backstory: b\n  mood: happy\n"},
		{"empty", ""},
		{"not a mapping", "- writer\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse[AgentConfig]([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}

	_, err := Parse[AgentConfig]([]byte("writer:\n  role: Writer\n  backstory: b\n"))
	assert.ErrorIs(t, err, schema.ErrInvalid)
	assert.ErrorContains(t, err, "goal")
}

func TestCheckReferences(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{
		AgentsFile: {Data: []byte(agentsYAML)},
		TasksFile:  {Data: []byte("draft:\n  description: d\n  expected_output: e\n  agent: ghost\n")},
	})
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.ErrorContains(t, err, "ghost")

	_, err = LoadFS(fstest.MapFS{
		AgentsFile: {Data: []byte(agentsYAML)},
		TasksFile:  {Data: []byte("draft:\n  description: d\n  expected_output: e\n  agent: writer\n  context: [research]\n")},
	})
	assert.ErrorIs(t, err, ErrMissingKey)
}
