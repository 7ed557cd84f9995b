package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/metascrub/metascrub/internal/handler"
	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

// Engine runs scrub tasks through a metadata handler with a fixed-size
// worker pool. Each task reads the source's metadata for reporting and
// writes a cleaned copy to the planned destination.
type Engine struct {
	workers int
	dryRun  bool
	handler handler.Handler
}

func New(workers int, dryRun bool, h handler.Handler) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		workers: workers,
		dryRun:  dryRun,
		handler: h,
	}
}

type ScrubResult struct {
	Task  types.ScrubTask
	Error error
}

func (e *Engine) ScrubAll(ctx context.Context, tasks []types.ScrubTask, resultChan chan<- ScrubResult) {
	taskChan := make(chan types.ScrubTask, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				if err := ctx.Err(); err != nil {
					task.Status = types.TaskStatusSkipped
					task.Action = types.ScrubActionSkipped
					task.Error = err.Error()
					resultChan <- ScrubResult{Task: task, Error: err}
					continue
				}
				resultChan <- e.scrubOne(ctx, task)
			}
		}()
	}

	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	wg.Wait()
	close(resultChan)
}

func (e *Engine) scrubOne(ctx context.Context, task types.ScrubTask) ScrubResult {
	mt, ok := mediatype.Parse(task.Source.MediaType)
	if !ok {
		task.Status = types.TaskStatusSkipped
		task.Action = types.ScrubActionUnsupported
		return ScrubResult{Task: task}
	}

	if meta, err := e.handler.ReadMetadata(ctx, mt, task.Source.Path); err == nil && meta != nil {
		task.AttributesFound = meta.Attributes.Len()
	}

	if e.dryRun {
		task.Status = types.TaskStatusCompleted
		return ScrubResult{Task: task}
	}

	if err := os.MkdirAll(filepath.Dir(task.DestPath), 0755); err != nil {
		task.Status = types.TaskStatusFailed
		task.Error = err.Error()
		task.Action = types.ScrubActionFailed
		return ScrubResult{Task: task, Error: err}
	}

	partPath := task.DestPath + ".part"

	ok, err := e.handler.RemoveMetadata(ctx, mt, task.Source.Path, partPath)
	if err != nil {
		os.Remove(partPath)
		task.Status = types.TaskStatusFailed
		task.Error = err.Error()
		task.Action = types.ScrubActionFailed
		return ScrubResult{Task: task, Error: err}
	}
	if !ok {
		os.Remove(partPath)
		task.Status = types.TaskStatusSkipped
		task.Action = types.ScrubActionUnsupported
		return ScrubResult{Task: task}
	}

	// Preserve modification time
	if info, err := os.Stat(task.Source.Path); err == nil {
		os.Chtimes(partPath, info.ModTime(), info.ModTime())
	}

	if err := os.Rename(partPath, task.DestPath); err != nil {
		os.Remove(partPath)
		task.Status = types.TaskStatusFailed
		task.Error = err.Error()
		task.Action = types.ScrubActionFailed
		return ScrubResult{Task: task, Error: err}
	}

	task.Status = types.TaskStatusCompleted
	return ScrubResult{Task: task}
}
