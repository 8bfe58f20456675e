package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/reelcut/config"
	"github.com/user/reelcut/deps"
	"github.com/user/reelcut/logging"
)

var Version = "0.1.0"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "reelcut",
	Short: "A terminal video editor",
	Long: `reelcut is a two-track video editor for the terminal.

Clips are arranged on a main track and a picture-in-picture track,
previewed through mpv and rendered to a single file with ffmpeg.

Features:
  - Import media, split, trim, reorder and move clips between tracks
  - Undo and redo every edit
  - Save projects as JSON or YAML
  - Export the composite with progress reporting
  - Drive a session over HTTP and websockets`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logging.Init(os.Stderr, cfg.LogLevel, verbose)
		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reelcut version %s\n", Version)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the external programs reelcut drives (mpv, ffmpeg, ffprobe) are installed and available.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromContext(cmd.Context())

		fmt.Println("Checking dependencies...")
		fmt.Println()

		allGood := true
		for _, r := range deps.Report(binaries(cfg)) {
			if r.Err != nil {
				fmt.Printf("✗ %s: NOT FOUND\n", r.Name)
				var de *deps.DependencyError
				if errors.As(r.Err, &de) {
					fmt.Printf("  Install from: %s\n", de.InstallURL)
				}
				allGood = false
				continue
			}
			fmt.Printf("✓ %s: %s\n", r.Name, r.Path)
		}

		fmt.Println()
		if allGood {
			fmt.Println("All dependencies are installed!")
		} else {
			fmt.Println("Some dependencies are missing. Playback needs mpv; import and export need ffmpeg.")
			os.Exit(1)
		}
	},
}

func binaries(cfg *config.Config) deps.Binaries {
	return deps.Binaries{
		Mpv:     cfg.Mpv.Binary,
		Ffmpeg:  cfg.FFmpeg.Binary,
		Ffprobe: cfg.FFmpeg.ProbeBinary,
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
