package scanning

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/nmapcycle/internal/errors"
)

func TestPreflight_CustomTool(t *testing.T) {
	tool := writeTool(t, okTool)

	path, err := Preflight(context.Background(), tool)
	require.NoError(t, err)
	assert.Equal(t, tool, path)
}

func TestPreflight_MissingTool(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := Preflight(context.Background(), missing)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeToolNotFound))
	assert.True(t, errors.IsFatal(err))
}

func TestPreflight_DefaultTool(t *testing.T) {
	_, lookErr := exec.LookPath(DefaultTool)

	path, err := Preflight(context.Background(), "")
	if lookErr != nil {
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeToolNotFound))
		return
	}
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}
