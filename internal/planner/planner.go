package planner

import (
	"path/filepath"
	"strings"

	"github.com/metascrub/metascrub/pkg/types"
)

const DefaultOutputSuffix = "clean"

type Planner struct {
	destRoot     string
	outputSuffix string
}

// New creates a Planner. destRoot may be empty, in which case cleaned
// files are placed next to their sources.
func New(destRoot, outputSuffix string) *Planner {
	if outputSuffix == "" {
		outputSuffix = DefaultOutputSuffix
	}
	return &Planner{
		destRoot:     destRoot,
		outputSuffix: outputSuffix,
	}
}

func (p *Planner) Plan(entry types.FileEntry) types.ScrubTask {
	task := types.ScrubTask{
		Source: entry,
		Status: types.TaskStatusPending,
	}

	destDir := p.destRoot
	if destDir == "" {
		destDir = filepath.Dir(entry.Path)
	}

	task.DestPath = filepath.Join(destDir, p.outputName(entry.Name))
	return task
}

// outputName inserts the suffix before the extension, so photo.jpg
// becomes photo.clean.jpg and an extensionless file gets the suffix
// appended.
func (p *Planner) outputName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base = name
		ext = ""
	}
	return base + "." + p.outputSuffix + ext
}
