package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/user/reelcut/config"
	"github.com/user/reelcut/media"
	"github.com/user/reelcut/pkg/export"
	"github.com/user/reelcut/pkg/timeutil"
)

var probeJSON bool

var probeCmd = &cobra.Command{
	Use:   "probe <file>...",
	Short: "Show media metadata",
	Long:  `Run ffprobe on each file and print the metadata the editor uses: duration, frame size, codec and audio.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		exec, err := newExecutor(cfg)
		if err != nil {
			return err
		}

		var infos []*media.Info
		for _, path := range args {
			if !media.IsSupported(path) {
				fmt.Fprintf(os.Stderr, "%s: unsupported file type\n", path)
				continue
			}
			info, err := exec.Probe(cmd.Context(), path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				continue
			}
			infos = append(infos, info)
		}

		if probeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}
		for _, info := range infos {
			printInfo(info)
		}
		return nil
	},
}

func printInfo(info *media.Info) {
	fmt.Println(info.Filename)
	fmt.Printf("  Duration: %s\n", timeutil.FormatClock(info.Duration))
	fmt.Printf("  Video:    %dx%d %s @ %.2f fps\n", info.Width, info.Height, info.Codec, info.FPS)
	fmt.Printf("  Audio:    %t\n", info.HasAudio)
	fmt.Printf("  Size:     %s\n", humanize.Bytes(uint64(info.Size)))
}

var (
	exportOutput  string
	exportNoAudio bool
)

var exportCmd = &cobra.Command{
	Use:   "export <project>",
	Short: "Render a project to a video file",
	Long: `Render the main track with the picture-in-picture overlay composited
on top. Without --output the file is written next to the project with a
dated name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.executor == nil {
			return fmt.Errorf("export needs ffmpeg; run 'reelcut doctor'")
		}

		if err := a.session.Open(ctx, args[0]); err != nil {
			return err
		}

		dir, name := ".", exportOutput
		if name == "" {
			dir, name = filepath.Dir(a.session.Path()), a.session.DefaultExportName(time.Now())
		}
		out := export.BuildOutputPath(dir, name)
		opts := a.exportOptions()
		if exportNoAudio {
			opts.Audio = false
		}

		start := time.Now()
		path, err := a.session.Export(ctx, a.executor, out, opts, printProgress)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("Exported %s in %s\n", path, time.Since(start).Round(time.Second))
		return nil
	},
}

func printProgress(p media.Progress) {
	fmt.Fprintf(os.Stderr, "\r%5.1f%%  %s  %s", p.Percentage, timeutil.FormatClock(p.Seconds), p.Speed)
}

func init() {
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "print JSON")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file")
	exportCmd.Flags().BoolVar(&exportNoAudio, "no-audio", false, "render video only")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(exportCmd)
}
