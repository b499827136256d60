package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "something-else", Data: dir}

	err := p.Validate()
	require.NoError(t, err)

	assert.Equal(t, "dev", p.Mode)
	assert.Equal(t, "memory", p.Driver)
	assert.Equal(t, filepath.Join(dir, "resume.txt"), p.ResumePath)
	assert.True(t, p.IsDev())
}

func TestValidateSQLiteDSN(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "prod", Driver: "sqlite", Data: dir}

	err := p.Validate()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "gojo_prod.db"), p.DSN)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Driver: "mysql", Data: t.TempDir()}
	assert.Error(t, p.Validate())
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	p := &Profile{Mode: "prod", Driver: "postgres", Data: t.TempDir()}
	assert.Error(t, p.Validate())
}

func TestIsChatEnabled(t *testing.T) {
	p := &Profile{}
	assert.False(t, p.IsChatEnabled())
	p.OpenAIAPIKey = "sk-test"
	assert.True(t, p.IsChatEnabled())
}
