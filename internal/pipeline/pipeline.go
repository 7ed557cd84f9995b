package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/metascrub/metascrub/internal/config"
	"github.com/metascrub/metascrub/internal/engine"
	"github.com/metascrub/metascrub/internal/handler"
	"github.com/metascrub/metascrub/internal/handler/audiotag"
	"github.com/metascrub/metascrub/internal/handler/av"
	"github.com/metascrub/metascrub/internal/handler/exifh"
	"github.com/metascrub/metascrub/internal/handler/office"
	"github.com/metascrub/metascrub/internal/handler/pngh"
	"github.com/metascrub/metascrub/internal/log"
	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/internal/planner"
	"github.com/metascrub/metascrub/internal/policy"
	"github.com/metascrub/metascrub/internal/scanner"
	"github.com/metascrub/metascrub/internal/state"
	"github.com/metascrub/metascrub/internal/verify"
	"github.com/metascrub/metascrub/pkg/types"
)

type Pipeline struct {
	cfg              *config.Config
	scanner          *scanner.Scanner
	handler          handler.Handler
	planner          *planner.Planner
	output           *policy.OutputChecker
	conflict         *policy.ConflictResolver
	engine           *engine.Engine
	verifier         *verify.Verifier
	state            *state.State
	logger           *log.Logger
	progressCallback ProgressCallback
	userDataManager  *config.UserDataManager
}

// NewHandler composes the production handler chain. Format handlers
// with disjoint write responsibilities are merged, and a wildcard
// fallback keeps unknown formats readable as empty metadata.
func NewHandler() (handler.Handler, error) {
	merged, err := handler.NewMergeAll(
		exifh.New(nil),
		pngh.New(),
		office.New(),
		av.New(),
		audiotag.New(),
	)
	if err != nil {
		return nil, err
	}
	return handler.NewFirstMatch(merged, handler.Nop{}), nil
}

func New(cfg *config.Config) (*Pipeline, error) {
	logger, err := log.New(cfg.LogFile, cfg.LogJSON, true)
	if err != nil {
		return nil, err
	}

	st, err := state.Load(cfg.StateFile)
	if err != nil {
		return nil, err
	}

	h, err := NewHandler()
	if err != nil {
		return nil, err
	}

	quarantineRoot := cfg.Dest
	if quarantineRoot == "" {
		quarantineRoot = cfg.Source
	}
	quarantinePath := filepath.Join(quarantineRoot, cfg.QuarantineDir)

	userDataManager, err := config.NewUserDataManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create user data manager: %w", err)
	}

	return &Pipeline{
		cfg:             cfg,
		scanner:         scanner.New(cfg.IncludeExtensions),
		handler:         h,
		planner:         planner.New(cfg.Dest, cfg.OutputSuffix),
		output:          policy.NewOutputChecker(),
		conflict:        policy.NewConflictResolver(cfg.ConflictPolicy, quarantinePath),
		engine:          engine.New(cfg.Jobs, cfg.DryRun, h),
		verifier:        verify.New(h),
		state:           st,
		logger:          logger,
		userDataManager: userDataManager,
	}, nil
}

func (p *Pipeline) SetProgressCallback(cb ProgressCallback) {
	p.progressCallback = cb
}

func (p *Pipeline) Run(ctx context.Context) (*types.RunSummary, error) {
	startTime := time.Now()

	p.logger.Info("Starting scan: '" + p.cfg.Source + "'")

	if p.progressCallback != nil {
		p.progressCallback(ProgressUpdate{
			Type:    "status",
			Message: "Scanning files... (this can take a while)",
		})
	}

	entries, err := p.scanner.Scan(p.cfg.Source)
	if err != nil {
		summary := &types.RunSummary{
			StartTime: startTime,
			Duration:  time.Since(startTime),
		}

		historyEntry := types.ScrubHistoryEntry{
			ID:        uuid.NewString(),
			Summary:   *summary,
			Config:    p.configToScrubConfig(),
			Status:    types.ScrubStatusFailed,
			CreatedAt: startTime,
		}

		if saveErr := p.userDataManager.AddHistoryEntry(historyEntry); saveErr != nil {
			p.logger.Error("Failed to save scrub history", saveErr)
		}

		return nil, err
	}

	p.logger.Info("Found " + strconv.Itoa(len(entries)) + " files")

	if p.progressCallback != nil {
		p.progressCallback(ProgressUpdate{
			Type:    "status",
			Message: "Planning scrub tasks...",
			Total:   len(entries),
		})
	}

	var tasks []types.ScrubTask
	var plannedCount int

	summary := &types.RunSummary{
		ScannedFiles: len(entries),
		StartTime:    startTime,
	}

	for i, entry := range entries {
		if i%100 == 0 {
			if p.progressCallback != nil {
				p.progressCallback(ProgressUpdate{
					Type:    "analysis_progress",
					Message: "Planning scrub tasks...",
					Current: i,
					Total:   len(entries),
				})
			}
		}

		if !p.cfg.IgnoreState && p.state.IsScrubbed(entry.Path, entry.Size) {
			continue
		}

		plannedCount++
		task := p.planner.Plan(entry)

		// A cleaned output newer than the source means a previous run
		// already handled this file.
		if !p.cfg.IgnoreState {
			isCurrent, err := p.output.IsCurrent(entry, task.DestPath)
			if err == nil && isCurrent {
				summary.Skipped++
				continue
			}
		}

		resolution := p.conflict.Resolve(&task)
		if resolution.Skip {
			summary.Skipped++
			continue
		}

		task.DestPath = resolution.DestPath
		task.Action = resolution.Action
		tasks = append(tasks, task)
	}

	// Ensure 100% analysis progress is sent
	if p.progressCallback != nil {
		p.progressCallback(ProgressUpdate{
			Type:    "analysis_progress",
			Message: "Planning complete",
			Current: len(entries),
			Total:   len(entries),
		})
	}

	summary.TotalFiles = plannedCount

	if len(tasks) == 0 {
		return p.finish(summary, startTime)
	}

	resultChan := make(chan engine.ScrubResult, len(tasks))
	go p.engine.ScrubAll(ctx, tasks, resultChan)

	var bytesWritten int64
	processed := 0

	for result := range resultChan {
		processed++
		p.logger.Progress(processed, len(tasks), result.Task.Source.Name)

		task := result.Task

		if result.Error == nil && task.Status == types.TaskStatusCompleted && !p.cfg.DryRun && p.cfg.Verify {
			if err := p.verifyTask(ctx, &task); err != nil {
				result.Error = err
			}
		}

		if p.progressCallback != nil {
			p.progressCallback(ProgressUpdate{
				Type:     "progress",
				Current:  processed,
				Total:    len(tasks),
				Filename: task.Source.Name,
				Action:   task.Action,
			})
		}

		if result.Error != nil {
			summary.Failed++
			p.logger.LogTask(task, 0)
			continue
		}

		switch task.Action {
		case types.ScrubActionScrubbed:
			summary.Scrubbed++
		case types.ScrubActionSkipped:
			summary.Skipped++
		case types.ScrubActionRenamed:
			summary.Renamed++
		case types.ScrubActionOverwritten:
			summary.Overwritten++
		case types.ScrubActionQuarantined:
			summary.Quarantined++
		case types.ScrubActionUnsupported:
			summary.Unsupported++
		}

		if task.Status == types.TaskStatusCompleted {
			summary.AttributesRemoved += task.AttributesFound
			bytesWritten += task.Source.Size
			if !p.cfg.DryRun {
				p.state.MarkScrubbed(task.Source.Path, task.Source.Size, task.DestPath, task.AttributesFound)
			}
		}
		p.logger.LogTask(task, 0)
	}

	summary.BytesWritten = bytesWritten
	if d := time.Since(startTime); d.Seconds() > 0 {
		summary.BytesPerSecond = float64(bytesWritten) / d.Seconds()
	}

	if !p.cfg.DryRun {
		if err := p.state.Save(); err != nil {
			p.logger.Error("Failed to save state", err)
		}
	}

	return p.finish(summary, startTime)
}

// verifyTask re-reads the cleaned output and marks the task failed if
// sensitive metadata survived.
func (p *Pipeline) verifyTask(ctx context.Context, task *types.ScrubTask) error {
	mt, ok := mediatype.Parse(task.Source.MediaType)
	if !ok {
		return nil
	}
	if err := p.verifier.Verify(ctx, mt, task.DestPath); err != nil {
		task.Status = types.TaskStatusFailed
		task.Action = types.ScrubActionFailed
		task.Error = err.Error()
		return err
	}
	return nil
}

func (p *Pipeline) finish(summary *types.RunSummary, startTime time.Time) (*types.RunSummary, error) {
	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(startTime)
	p.logger.Summary(*summary)

	status := types.ScrubStatusSuccess
	if summary.Failed > 0 {
		status = types.ScrubStatusFailed
	}

	historyEntry := types.ScrubHistoryEntry{
		ID:        uuid.NewString(),
		Summary:   *summary,
		Config:    p.configToScrubConfig(),
		Status:    status,
		CreatedAt: summary.StartTime,
	}

	if err := p.userDataManager.AddHistoryEntry(historyEntry); err != nil {
		p.logger.Error("Failed to save scrub history", err)
		// Don't fail the run if history save fails
	}

	// Wait a bit to ensure previous progress messages are sent
	time.Sleep(100 * time.Millisecond)

	if p.progressCallback != nil {
		p.progressCallback(ProgressUpdate{
			Type:    "complete",
			Summary: summary,
		})
	}

	return summary, nil
}

func (p *Pipeline) Close() error {
	return p.logger.Close()
}

// configToScrubConfig converts Config to ScrubConfig for history entry.
func (p *Pipeline) configToScrubConfig() types.ScrubConfig {
	return types.ScrubConfig{
		Source:            p.cfg.Source,
		Dest:              p.cfg.Dest,
		ConflictPolicy:    p.cfg.ConflictPolicy,
		OutputSuffix:      p.cfg.OutputSuffix,
		DryRun:            p.cfg.DryRun,
		Verify:            p.cfg.Verify,
		IgnoreState:       p.cfg.IgnoreState,
		Jobs:              p.cfg.Jobs,
		IncludeExtensions: p.cfg.IncludeExtensions,
		QuarantineDir:     p.cfg.QuarantineDir,
	}
}
