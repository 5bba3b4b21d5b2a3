package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quip-export/internal/quip"
	"github.com/pdiddy/quip-export/pkg/types"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List folders accessible to the token's user",
	Long: `Folders prints the ID and title of every folder the access token can
reach: the user's desktop, private, and shared folders plus folders shared
through groups. Use an ID from this list as the argument to export.`,
	RunE: runFolders,
}

func init() {
	foldersCmd.Flags().String("token", "", "Quip personal access token (default: QUIP_TOKEN or .secrets/quip-token)")
	foldersCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")

	rootCmd.AddCommand(foldersCmd)
}

func runFolders(cmd *cobra.Command, args []string) error {
	tokenFlag, _ := cmd.Flags().GetString("token")
	token, err := resolveToken(tokenFlag)
	if err != nil {
		return err
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	client := quip.NewClient(types.QuipConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		AccessToken:  token,
		RequestDelay: 50 * time.Millisecond,
	})

	folders, err := client.AccessibleFolders(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}
	for _, f := range folders {
		fmt.Printf("%-16s %s\n", f.ID, f.Title)
	}
	fmt.Fprintf(os.Stderr, "%d folder(s)\n", len(folders))
	return nil
}
