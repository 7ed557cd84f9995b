// Package types defines core data structures used across MetaScrub modules.
package types

import (
	"time"
)

// FileEntry represents a scanned file with its filesystem attributes.
type FileEntry struct {
	// Path is the absolute path to the source file.
	Path string
	// Name is the base filename.
	Name string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
	// Extension is the lowercase file extension without dot (e.g., "jpg", "docx").
	Extension string
	// MediaType is the detected media type string (e.g., "image/jpeg").
	// Empty if detection failed.
	MediaType string
}

// ScrubTask represents a planned metadata removal operation for one file.
type ScrubTask struct {
	// Source is the source FileEntry.
	Source FileEntry
	// DestPath is the full path of the cleaned output file.
	DestPath string
	// Status indicates the task status.
	Status TaskStatus
	// Error contains error message if the task failed.
	Error string
	// Action indicates what action was taken (scrubbed, skipped, renamed, etc.).
	Action ScrubAction
	// AttributesFound is the number of metadata attributes read before scrubbing.
	AttributesFound int
}

// TaskStatus represents the status of a scrub task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusSkipped   TaskStatus = "skipped"
)

// ScrubAction represents the action taken for a file.
type ScrubAction string

const (
	ScrubActionScrubbed    ScrubAction = "scrubbed"
	ScrubActionSkipped     ScrubAction = "skipped"
	ScrubActionRenamed     ScrubAction = "renamed"
	ScrubActionOverwritten ScrubAction = "overwritten"
	ScrubActionQuarantined ScrubAction = "quarantined"
	ScrubActionUnsupported ScrubAction = "unsupported"
	ScrubActionFailed      ScrubAction = "failed"
)

// ConflictPolicy defines how to handle output filename conflicts.
type ConflictPolicy string

const (
	ConflictPolicySkip       ConflictPolicy = "skip"
	ConflictPolicyRename     ConflictPolicy = "rename"
	ConflictPolicyOverwrite  ConflictPolicy = "overwrite"
	ConflictPolicyQuarantine ConflictPolicy = "quarantine"
)

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	ScannedFiles      int
	TotalFiles        int
	Scrubbed          int
	Skipped           int
	Renamed           int
	Overwritten       int
	Quarantined       int
	Unsupported       int
	Failed            int
	AttributesRemoved int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
	BytesWritten      int64
	BytesPerSecond    float64
}

// ConfigPreset represents a saved configuration preset.
type ConfigPreset struct {
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	Source            string         `json:"source,omitempty"`
	Dest              string         `json:"dest,omitempty"`
	IncludeExtensions []string       `json:"include_extensions"`
	Jobs              int            `json:"jobs"`
	ConflictPolicy    ConflictPolicy `json:"conflict_policy"`
	OutputSuffix      string         `json:"output_suffix"`
	QuarantineDir     string         `json:"quarantine_dir"`
	DryRun            bool           `json:"dry_run"`
	Verify            bool           `json:"verify"`
	IgnoreState       bool           `json:"ignore_state"`
	CreatedAt         time.Time      `json:"created_at"`
}

// UserSettings represents the current user settings for the web UI.
type UserSettings struct {
	Source            string         `json:"source"`
	Dest              string         `json:"dest"`
	ConflictPolicy    ConflictPolicy `json:"conflict_policy"`
	OutputSuffix      string         `json:"output_suffix"`
	DryRun            bool           `json:"dry_run"`
	Verify            bool           `json:"verify"`
	IgnoreState       bool           `json:"ignore_state"`
	Jobs              int            `json:"jobs"`
	IncludeExtensions []string       `json:"include_extensions"`
	QuarantineDir     string         `json:"quarantine_dir"`
	StateFile         string         `json:"state_file"`
	LogFile           string         `json:"log_file"`
	LogJSON           bool           `json:"log_json"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// PathHistory stores the list of recently used paths for autocomplete.
type PathHistory struct {
	Source    []string  `json:"source"`
	Dest      []string  `json:"dest"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bookmarks stores the user's bookmarked paths.
type Bookmarks struct {
	Source    []string  `json:"source"`
	Dest      []string  `json:"dest"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScrubStatus represents the overall status of a scrub run.
type ScrubStatus string

const (
	ScrubStatusSuccess ScrubStatus = "success"
	ScrubStatusFailed  ScrubStatus = "failed"
)

// ScrubConfig contains the configuration used for a scrub run.
type ScrubConfig struct {
	Source            string         `json:"source"`
	Dest              string         `json:"dest"`
	ConflictPolicy    ConflictPolicy `json:"conflict_policy"`
	OutputSuffix      string         `json:"output_suffix"`
	DryRun            bool           `json:"dry_run"`
	Verify            bool           `json:"verify"`
	IgnoreState       bool           `json:"ignore_state"`
	Jobs              int            `json:"jobs"`
	IncludeExtensions []string       `json:"include_extensions"`
	QuarantineDir     string         `json:"quarantine_dir"`
}

// ScrubHistoryEntry represents a single scrub session record.
type ScrubHistoryEntry struct {
	ID        string      `json:"id"`
	Summary   RunSummary  `json:"summary"`
	Config    ScrubConfig `json:"config"`
	Status    ScrubStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// ScrubHistory stores the collection of scrub history entries.
type ScrubHistory struct {
	Entries   []ScrubHistoryEntry `json:"entries"`
	UpdatedAt time.Time           `json:"updated_at"`
}
