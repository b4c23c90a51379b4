package scanning

import (
	"context"
	"os/exec"

	"github.com/Ullaakut/nmap/v3"

	"github.com/anstrom/nmapcycle/internal/errors"
)

// Preflight checks that tool can be resolved and returns its path.
// The default tool is located through the nmap library, anything else
// through $PATH.
func Preflight(ctx context.Context, tool string) (string, error) {
	if tool == "" {
		tool = DefaultTool
	}

	if tool == DefaultTool {
		if _, err := nmap.NewScanner(ctx); err != nil {
			return "", errors.ErrToolNotFound(tool, err)
		}
	}

	path, err := exec.LookPath(tool)
	if err != nil {
		return "", errors.ErrToolNotFound(tool, err)
	}
	return path, nil
}
