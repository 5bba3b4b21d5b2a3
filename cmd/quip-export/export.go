package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quip-export/internal/convert"
	"github.com/pdiddy/quip-export/internal/export"
	"github.com/pdiddy/quip-export/internal/quip"
	"github.com/pdiddy/quip-export/pkg/types"
)

const (
	defaultTimeout     = 45 * time.Second
	defaultDelay       = 120 * time.Millisecond
	defaultMaxAttempts = 4
	defaultConcurrency = 4
	defaultUserAgent   = "quip-export/0.1"
)

var exportCmd = &cobra.Command{
	Use:   "export [folder-id]",
	Short: "Export a Quip folder tree to Markdown",
	Long: `Export walks the given folder (an ID or a quip.com folder link), fetches
every document reachable from it, converts the HTML to Markdown with YAML
front matter, and writes the files under the output directory. Documents
unchanged since the previous run are skipped.

With --all, every folder accessible to the token's user is exported instead
of a single root.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Bool("all", false, "export every accessible folder instead of a single root")
	exportCmd.Flags().String("out", "", "base output directory (default ~/Documents/QuipNotes)")
	exportCmd.Flags().Bool("no-recursive", false, "export only the root folder's own documents")
	exportCmd.Flags().Bool("maintain-structure", true, "mirror the Quip folder hierarchy in the output tree")
	exportCmd.Flags().Bool("delete-stale", true, "remove the old file when a document moves to a new path")
	exportCmd.Flags().String("token", "", "Quip personal access token (default: QUIP_TOKEN or .secrets/quip-token)")
	exportCmd.Flags().Int("concurrency", defaultConcurrency, "number of documents fetched and written in parallel")
	exportCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	exportCmd.Flags().Duration("delay", defaultDelay, "politeness pause after each API call (0 disables)")
	exportCmd.Flags().Int("max-attempts", defaultMaxAttempts, "total tries per request before a transient failure sticks")

	rootCmd.AddCommand(exportCmd)
}

// folderIDFromArg accepts either a bare folder ID or a quip.com folder
// link (https://quip.com/<id>/<title-slug>) and returns the ID portion.
func folderIDFromArg(arg string) string {
	if i := strings.Index(arg, "quip.com/"); i >= 0 {
		arg = arg[i+len("quip.com/"):]
		if j := strings.Index(arg, "/"); j >= 0 {
			arg = arg[:j]
		}
	}
	return arg
}

func runExport(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")

	folderID := ""
	if len(args) > 0 {
		folderID = folderIDFromArg(args[0])
	} else if !all {
		folderID = viper.GetString("folder_id")
	}
	if folderID == "" && !all {
		return fmt.Errorf("provide a folder ID (or link), set QUIP_FOLDER_ID, or pass --all")
	}
	if folderID != "" && all {
		return fmt.Errorf("--all cannot be combined with a folder ID")
	}

	tokenFlag, _ := cmd.Flags().GetString("token")
	token, err := resolveToken(tokenFlag)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = viper.GetString("out")
	}
	if out == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		out = filepath.Join(home, "Documents", "QuipNotes")
	}

	noRecursive, _ := cmd.Flags().GetBool("no-recursive")
	maintain, _ := cmd.Flags().GetBool("maintain-structure")
	deleteStale, _ := cmd.Flags().GetBool("delete-stale")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	delay, _ := cmd.Flags().GetDuration("delay")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")

	client := quip.NewClient(types.QuipConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		AccessToken: token,
		Retry: types.RetryConfig{
			MaxAttempts: maxAttempts,
		},
		RequestDelay: delay,
	})

	cfg := types.ExportConfig{
		OutDir:            out,
		Recursive:         !noRecursive,
		MaintainStructure: maintain,
		DeleteStale:       deleteStale,
		Concurrency:       concurrency,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exp := export.New(client, convert.Markdown{}, cfg, os.Stdout)

	var res export.Result
	if all {
		res, err = exp.RunAll(ctx)
	} else {
		res, err = exp.Run(ctx, folderID)
	}
	if err != nil {
		return err
	}
	if res.HasFailures() {
		for _, f := range res.Failed {
			fmt.Fprintf(os.Stderr, "failed: %s (%s): %v\n", f.Title, f.ID, f.Err)
		}
		return fmt.Errorf("%d document(s) failed to export", len(res.Failed))
	}
	return nil
}
