package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalbot/internal/service"
)

const corpusCSV = `short_title,subject_matter_name,offence_title,offence_description,fo_max_years,fo_max_fine
Companies Act,Financial Laws,Fraud,Deceptive financial reporting,5,1000000
Indian Penal Code,Criminal Laws,Theft,Dishonest taking of property,3,n/a
`

func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("PORT", "")
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "laws.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(corpusCSV), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "corpus:\n  path: " + csvPath + "\nsynthesis:\n  seed: 1\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"legalbot"}, args...))
	return out.String(), err
}

func TestAsk(t *testing.T) {
	cfgPath := setup(t)

	out, err := run(t, "--config", cfgPath, "ask", "companies", "act", "financial", "fraud")
	require.NoError(t, err)
	assert.Contains(t, out, "Companies Act")
	assert.Contains(t, out, "This is considered a serious offense")

	out, err = run(t, "--config", cfgPath, "ask", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, service.GreetingReply)

	out, err = run(t, "--config", cfgPath, "ask", "weather", "forecast")
	require.NoError(t, err)
	assert.Contains(t, out, service.FallbackMessage)
}

func TestAsk_Errors(t *testing.T) {
	cfgPath := setup(t)

	_, err := run(t, "--config", cfgPath, "ask")
	assert.Error(t, err)

	_, err = run(t, "--config", cfgPath, "--corpus", filepath.Join(t.TempDir(), "missing.csv"), "ask", "fraud")
	assert.Error(t, err)
}

func TestApp_Commands(t *testing.T) {
	app := newApp()
	names := make([]string, len(app.Commands))
	for i, c := range app.Commands {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"serve", "chat", "ask"}, names)
}
