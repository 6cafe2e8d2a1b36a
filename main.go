package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Julian-Moncarz/whisper-hotkey-tool/config"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/internal/app"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/journal"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/langdetect"
	"github.com/Julian-Moncarz/whisper-hotkey-tool/stt"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath   string
	modelFlag    string
	engineFlag   string
	quiet        bool
	verbose      bool
	historyCount int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "whisper model size for this run (tiny, base, small, medium, large-v2)")
	rootCmd.Flags().StringVar(&engineFlag, "engine", "", "transcription engine for this run (whisper-local, whisper-api)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress desktop notifications")

	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 20, "number of entries to show")

	modelsCmd.AddCommand(modelsDownloadCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "whisperkey",
	Short: "Hotkey-driven dictation for the focused application",
	Long: `Whisperkey listens for a global hotkey, records speech from the default
microphone, transcribes it with whisper and types the text at the cursor.`,
	RunE: runDaemon,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List whisper models and their install status",
	RunE:  runModelsList,
}

var modelsDownloadCmd = &cobra.Command{
	Use:   "download <size>",
	Short: "Download whisper model weights",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsDownload,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transcripts from the journal",
	RunE:  runHistory,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("whisperkey %s (commit %s, built %s)\n", version, commit, date)
	},
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	slog.Info("starting", "version", version, "commit", commit, "date", date)

	a, err := app.New(app.Options{
		ConfigPath: configPath,
		Model:      modelFlag,
		Engine:     engineFlag,
		Quiet:      quiet,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

func runModelsList(cmd *cobra.Command, args []string) error {
	dir, err := config.ModelsDir()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Model", "Size", "Installed"})
	table.SetBorder(false)
	for _, size := range stt.ModelSizes() {
		installed := "-"
		if stt.ModelInstalled(dir, size) {
			installed = "yes"
		}
		table.Append([]string{size, megabytes(stt.ModelBytes(size)), installed})
	}
	table.Render()
	return nil
}

func runModelsDownload(cmd *cobra.Command, args []string) error {
	size := args[0]
	if !stt.ValidSize(size) {
		return fmt.Errorf("unknown model %q, available: %s", size, strings.Join(stt.ModelSizes(), ", "))
	}
	dir, err := config.ModelsDir()
	if err != nil {
		return err
	}
	if stt.ModelInstalled(dir, size) {
		fmt.Printf("model %s already installed at %s\n", size, stt.ModelPath(dir, size))
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("downloading %s (%s)\n", size, megabytes(stt.ModelBytes(size)))
	err = stt.DownloadModel(ctx, dir, size, func(percent int) {
		fmt.Printf("\r%3d%%", percent)
	})
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Printf("installed %s\n", stt.ModelPath(dir, size))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	dir, err := config.JournalDir()
	if err != nil {
		return err
	}
	j, err := journal.Open(dir)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(historyCount)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No transcripts recorded. Set retain_transcripts in the config to keep them.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"When", "Language", "Audio", "Text"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, e := range entries {
		table.Append([]string{
			e.CreatedAt.Format("2006-01-02 15:04"),
			langdetect.Name(e.Language),
			e.Duration.Round(time.Second).String(),
			truncate(e.Text, 60),
		})
	}
	table.Render()
	return nil
}

func megabytes(n int64) string {
	return fmt.Sprintf("%d MB", n/(1<<20))
}

// truncate shortens a string for display purposes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
