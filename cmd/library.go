package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/user/reelcut/config"
	"github.com/user/reelcut/db"
	"github.com/user/reelcut/pkg/timeutil"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the media library",
	Long:  `List and prune the media files recorded by previous imports.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported media",
	Long:  `Display every imported media file as a table, most recent first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		database, err := db.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		items, err := db.SelectMedia(database)
		if err != nil {
			return fmt.Errorf("failed to query media: %w", err)
		}

		writeMediaTable(os.Stdout, items, time.Now())

		if len(items) == 0 {
			fmt.Println("\nNo media imported yet.")
		} else {
			fmt.Printf("\n%d file(s) in the library.\n", len(items))
		}
		return nil
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Forget an imported file",
	Long:  `Remove a media file and its thumbnails from the library. The file itself is not touched.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		database, err := db.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		if err := db.DeleteMedia(database, path); errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("not in the library: %s", path)
		} else if err != nil {
			return fmt.Errorf("failed to remove media: %w", err)
		}

		n, err := db.CountMedia(database)
		if err != nil {
			return fmt.Errorf("failed to count media: %w", err)
		}
		fmt.Printf("Removed %s (%d file(s) left)\n", filepath.Base(path), n)
		return nil
	},
}

func writeMediaTable(out io.Writer, items []db.Media, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFile\tDuration\tSize\tResolution\tImported")
	fmt.Fprintln(w, "--\t----\t--------\t----\t----------\t--------")
	for _, m := range items {
		res := "-"
		if m.Width > 0 && m.Height > 0 {
			res = fmt.Sprintf("%dx%d", m.Width, m.Height)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			m.ID,
			truncate(m.Filename, 40),
			timeutil.FormatShort(m.Duration),
			humanize.Bytes(uint64(m.Filesize)),
			res,
			humanize.RelTime(m.ImportedAt, now, "ago", "from now"),
		)
	}
	w.Flush()
}

var projectsLimit int

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage the recent projects list",
}

var projectsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently opened projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		database, err := db.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		projects, err := db.SelectRecentProjects(database, projectsLimit)
		if err != nil {
			return fmt.Errorf("failed to query projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Println("No recent projects.")
			return nil
		}
		writeProjectTable(os.Stdout, projects, time.Now())
		return nil
	},
}

var projectsForgetCmd = &cobra.Command{
	Use:   "forget <path>",
	Short: "Remove a project from the recent list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		database, err := db.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		return db.ForgetProject(database, path)
	},
}

func writeProjectTable(out io.Writer, projects []db.Project, now time.Time) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Name\tClips\tLength\tOpened\tPath")
	fmt.Fprintln(w, "----\t-----\t------\t------\t----")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			p.Name,
			p.ClipCount,
			timeutil.FormatShort(p.Duration),
			humanize.RelTime(p.OpenedAt, now, "ago", "from now"),
			p.Path,
		)
	}
	w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)
	projectsCmd.AddCommand(projectsRecentCmd)
	projectsCmd.AddCommand(projectsForgetCmd)
	projectsRecentCmd.Flags().IntVarP(&projectsLimit, "limit", "n", 10, "number of projects to show")

	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(projectsCmd)
}
