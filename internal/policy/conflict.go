package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metascrub/metascrub/pkg/types"
)

type ConflictResolver struct {
	policy        types.ConflictPolicy
	quarantineDir string
}

func NewConflictResolver(policy types.ConflictPolicy, quarantineDir string) *ConflictResolver {
	return &ConflictResolver{
		policy:        policy,
		quarantineDir: quarantineDir,
	}
}

type Resolution struct {
	Action   types.ScrubAction
	DestPath string
	Skip     bool
}

func (c *ConflictResolver) Resolve(task *types.ScrubTask) Resolution {
	if _, err := os.Stat(task.DestPath); os.IsNotExist(err) {
		return Resolution{Action: types.ScrubActionScrubbed, DestPath: task.DestPath}
	}

	switch c.policy {
	case types.ConflictPolicySkip:
		return Resolution{Action: types.ScrubActionSkipped, Skip: true}

	case types.ConflictPolicyOverwrite:
		return Resolution{Action: types.ScrubActionOverwritten, DestPath: task.DestPath}

	case types.ConflictPolicyRename:
		newPath := c.generateUniqueName(task.DestPath)
		return Resolution{Action: types.ScrubActionRenamed, DestPath: newPath}

	case types.ConflictPolicyQuarantine:
		quarantinePath := filepath.Join(c.quarantineDir, filepath.Base(task.DestPath))
		quarantinePath = c.generateUniqueName(quarantinePath)
		return Resolution{Action: types.ScrubActionQuarantined, DestPath: quarantinePath}

	default:
		return Resolution{Action: types.ScrubActionSkipped, Skip: true}
	}
}

func (c *ConflictResolver) generateUniqueName(path string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	for i := 1; i < 10000; i++ {
		newName := fmt.Sprintf("%s_%d%s", base, i, ext)
		newPath := filepath.Join(dir, newName)
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			return newPath
		}
	}

	return path
}
