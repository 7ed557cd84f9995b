package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/metascrub/metascrub/internal/config"
	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/internal/pipeline"
	"github.com/metascrub/metascrub/pkg/types"
	"github.com/spf13/cobra"
)

var (
	appVersion     = "0.1.0"
	cfgFile        string
	source         string
	dest           string
	includeExt     []string
	jobs           int
	conflictPolicy string
	outputSuffix   string
	quarantine     string
	stateFile      string
	logFile        string
	logJSON        bool
	dryRun         bool
	verifyOutput   bool
	ignoreState    bool
	inspectJSON    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "metascrub",
	Short: "Inspect and remove metadata from images, documents and media files",
	Long: `MetaScrub reads the embedded metadata of images, office documents, PDFs,
audio and video files, and writes cleaned copies with that metadata removed.`,
}

var scrubCmd = &cobra.Command{
	Use:   "scrub",
	Short: "Scrub metadata from all files under a directory",
	RunE:  runScrub,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the metadata embedded in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported media types",
	RunE:  runTypes,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(scrubCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(versionCmd)

	scrubCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	scrubCmd.Flags().StringVarP(&source, "source", "s", "", "source directory")
	scrubCmd.Flags().StringVarP(&dest, "dest", "d", "", "destination directory (default: next to sources)")
	scrubCmd.Flags().StringSliceVarP(&includeExt, "include-ext", "e", nil, "file extensions to include")
	scrubCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "number of concurrent workers (0=auto)")
	scrubCmd.Flags().StringVar(&conflictPolicy, "conflict", "", "conflict policy: skip, rename, overwrite, quarantine")
	scrubCmd.Flags().StringVar(&outputSuffix, "suffix", "", "suffix inserted before the output extension")
	scrubCmd.Flags().StringVar(&quarantine, "quarantine-dir", "", "directory for conflicting files")
	scrubCmd.Flags().StringVar(&stateFile, "state-file", "", "state file for resume")
	scrubCmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	scrubCmd.Flags().BoolVar(&logJSON, "log-json", false, "output JSON logs")
	scrubCmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate without writing")
	scrubCmd.Flags().BoolVar(&verifyOutput, "verify", false, "re-read outputs and fail on surviving metadata")
	scrubCmd.Flags().BoolVar(&ignoreState, "ignore-state", false, "reprocess files recorded in the state file")

	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print metadata as JSON")
}

func runScrub(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if source != "" {
		cfg.Source = source
	}
	if dest != "" {
		cfg.Dest = dest
	}
	if len(includeExt) > 0 {
		cfg.IncludeExtensions = includeExt
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	if conflictPolicy != "" {
		cfg.ConflictPolicy = types.ConflictPolicy(conflictPolicy)
	}
	if outputSuffix != "" {
		cfg.OutputSuffix = outputSuffix
	}
	if quarantine != "" {
		cfg.QuarantineDir = quarantine
	}
	if stateFile != "" {
		cfg.StateFile = stateFile
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logJSON {
		cfg.LogJSON = true
	}
	if dryRun {
		cfg.DryRun = true
	}
	if verifyOutput {
		cfg.Verify = true
	}
	if ignoreState {
		cfg.IgnoreState = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = p.Run(ctx)
	return err
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	if _, err := os.Stat(path); err != nil {
		return err
	}

	mt, ok := mediatype.DetectFile(path)
	if !ok {
		return fmt.Errorf("unrecognized file format: %s", path)
	}

	h, err := pipeline.NewHandler()
	if err != nil {
		return err
	}

	meta, err := h.ReadMetadata(context.Background(), mt, path)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}
	if meta == nil {
		meta = &types.Metadata{}
	}

	if inspectJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Path      string          `json:"path"`
			MediaType string          `json:"media_type"`
			Metadata  *types.Metadata `json:"metadata"`
		}{path, mt.String(), meta})
	}

	fmt.Printf("File:  %s\n", path)
	fmt.Printf("Type:  %s\n", mt)
	if meta.Title != "" {
		fmt.Printf("Title: %s\n", meta.Title)
	}
	if meta.Attributes.Len() == 0 {
		fmt.Println("No metadata attributes found.")
		return nil
	}
	fmt.Println()
	for _, attr := range meta.Attributes.List() {
		if attr.Secondary != "" {
			fmt.Printf("  %-14s %s (%s)\n", attr.Label+":", attr.Primary, attr.Secondary)
		} else {
			fmt.Printf("  %-14s %s\n", attr.Label+":", attr.Primary)
		}
	}
	return nil
}

func runTypes(cmd *cobra.Command, args []string) error {
	h, err := pipeline.NewHandler()
	if err != nil {
		return err
	}

	fmt.Println("Readable:")
	for _, mt := range h.ReadableTypes() {
		fmt.Printf("  %s\n", mt)
	}
	fmt.Println("Writable:")
	for _, mt := range h.WritableTypes() {
		fmt.Printf("  %s\n", mt)
	}
	return nil
}
