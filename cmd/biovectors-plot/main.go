// Command biovectors-plot renders distance heatmaps, projection timelines
// and neighbour word clouds from word-embedding frames.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/greenelab/biovectors/internal/config"
	"github.com/greenelab/biovectors/internal/frames"
	"github.com/greenelab/biovectors/internal/fsutil"
	"github.com/greenelab/biovectors/internal/monitoring"
	"github.com/greenelab/biovectors/internal/plots"
	"github.com/greenelab/biovectors/internal/version"
)

const programName = "biovectors-plot"

var errUsage = errors.New("usage")

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	if err := run(context.Background(), flag.Args(), fsutil.OSFileSystem{}, os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run dispatches a subcommand. Outputs are written through fsys; the
// paths written are reported on stdout.
func run(ctx context.Context, args []string, fsys fsutil.FileSystem, stdout io.Writer) error {
	command, rest := args[0], args[1:]

	switch command {
	case "distances":
		return handleDistances(ctx, rest, fsys, stdout)
	case "timeline":
		return handleTimeline(ctx, rest, fsys, stdout)
	case "wordcloud":
		return handleWordcloud(ctx, rest, fsys, stdout)
	case "wordcloud-gif":
		return handleWordcloudGIF(ctx, rest, fsys, stdout)
	case "version":
		fmt.Fprintln(stdout, version.String(programName))
		return nil
	case "help":
		printUsage()
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// inputFlags are shared by every plotting subcommand.
type inputFlags struct {
	input  string
	query  string
	config string
	quiet  bool
}

func addInputFlags(fs *flag.FlagSet, defaultQuery string) *inputFlags {
	in := &inputFlags{}
	fs.StringVar(&in.input, "input", "", "Input frame (.tsv, .csv, or SQLite .db/.sqlite)")
	fs.StringVar(&in.query, "query", defaultQuery, "Query selecting the frame when --input is a SQLite database")
	fs.StringVar(&in.config, "config", "", "Plot configuration JSON (defaults built in)")
	fs.BoolVar(&in.quiet, "quiet", false, "Suppress diagnostic logging")
	return in
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// load reads the frame and the plot configuration named by the flags.
func (in *inputFlags) load(ctx context.Context, fsys fsutil.FileSystem) (dataframe.DataFrame, *config.PlotConfig, error) {
	if in.quiet {
		monitoring.SetLogger(nil)
	}
	if in.input == "" {
		return dataframe.DataFrame{}, nil, fmt.Errorf("%w: --input is required", errUsage)
	}

	cfg := config.EmptyPlotConfig()
	if in.config != "" {
		var err error
		if cfg, err = config.LoadPlotConfig(in.config); err != nil {
			return dataframe.DataFrame{}, nil, err
		}
	}

	df, err := loadFrame(ctx, fsys, in.input, in.query)
	if err != nil {
		return dataframe.DataFrame{}, nil, err
	}
	monitoring.Logf("loaded %s: %d rows, %d columns", in.input, df.Nrow(), df.Ncol())
	return df, cfg, nil
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func loadFrame(ctx context.Context, fsys fsutil.FileSystem, path, query string) (dataframe.DataFrame, error) {
	if !isSQLite(path) {
		return frames.ReadFile(fsys, path)
	}
	if _, err := os.Stat(path); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open database: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return frames.LoadSQLite(ctx, db, query)
}

func handleDistances(ctx context.Context, args []string, fsys fsutil.FileSystem, stdout io.Writer) error {
	fs := newFlagSet("distances")
	in := addInputFlags(fs, "SELECT * FROM distances")
	token := fs.String("token", "", "Token to plot (required)")
	outDir := fs.String("out", ".", "Directory for the four heatmaps")
	prefix := fs.String("prefix", "", "File name prefix (defaults to the token)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return fmt.Errorf("%w: --token is required", errUsage)
	}

	df, cfg, err := in.load(ctx, fsys)
	if err != nil {
		return err
	}
	dp, err := plots.PlotLocalGlobalDistances(df, *token, cfg)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	paths, err := dp.SaveAll(fsys, *outDir, *prefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	return nil
}

func handleTimeline(ctx context.Context, args []string, fsys fsutil.FileSystem, stdout io.Writer) error {
	fs := newFlagSet("timeline")
	in := addInputFlags(fs, "SELECT * FROM timeline")
	out := fs.String("out", "token_timeline.png", "Output PNG")
	if err := fs.Parse(args); err != nil {
		return err
	}

	df, cfg, err := in.load(ctx, fsys)
	if err != nil {
		return err
	}
	p, err := plots.PlotTokenTimeline(df, cfg)
	if err != nil {
		return err
	}
	if err := plots.SaveTimeline(fsys, *out, p, cfg); err != nil {
		return err
	}
	fmt.Fprintln(stdout, *out)
	return nil
}

func handleWordcloud(ctx context.Context, args []string, fsys fsutil.FileSystem, stdout io.Writer) error {
	fs := newFlagSet("wordcloud")
	in := addInputFlags(fs, "SELECT * FROM timeline")
	out := fs.String("out", plots.DefaultNeighborsPNG, "Output PNG")
	perRow := fs.Int("per-row", 0, "Clouds per row (defaults to the configured count)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	df, cfg, err := in.load(ctx, fsys)
	if err != nil {
		return err
	}
	if err := plots.PlotWordcloudNeighbors(df, *perRow, *out, cfg, fsys); err != nil {
		return err
	}
	fmt.Fprintln(stdout, *out)
	return nil
}

func handleWordcloudGIF(ctx context.Context, args []string, fsys fsutil.FileSystem, stdout io.Writer) error {
	fs := newFlagSet("wordcloud-gif")
	in := addInputFlags(fs, "SELECT * FROM timeline")
	out := fs.String("out", plots.DefaultNeighborsGIF, "Output GIF")
	pieces := fs.String("pieces", "", "Folder kept with the per-year PNG frames (default: a scratch folder removed afterwards)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	df, cfg, err := in.load(ctx, fsys)
	if err != nil {
		return err
	}

	folder := *pieces
	if folder == "" {
		folder = filepath.Join(os.TempDir(), "gif-pieces-"+uuid.NewString())
		defer func() {
			if err := fsys.RemoveAll(folder); err != nil {
				monitoring.Logf("remove %s: %v", folder, err)
			}
		}()
	}
	if err := plots.PlotWordcloudNeighborsGIF(df, folder, *out, cfg, fsys); err != nil {
		return err
	}
	fmt.Fprintln(stdout, *out)
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `%s - plot word-embedding timelines

Usage:
  %s <command> [flags]

Commands:
  distances      Global, local and z-scored distance heatmaps of a token
  timeline       2D projection of a token across years
  wordcloud      Grid of per-year neighbour word clouds (PNG)
  wordcloud-gif  Animated per-year neighbour word clouds (GIF)
  version        Show version information
  help           Show this help message

Common flags:
  --input    Frame to read: .tsv, .csv, or a SQLite .db/.sqlite file
  --query    SQL selecting the frame from a SQLite input
  --config   Plot configuration JSON
  --quiet    Suppress diagnostic logging

Examples:
  # Heatmaps for one token into ./plots
  %s distances --input distances.tsv --token pandemic --out plots

  # Timeline from a SQLite export
  %s timeline --input vectors.db --query "SELECT * FROM pandemic_timeline"

  # Word-cloud animation keeping the frames
  %s wordcloud-gif --input pandemic_timeline.tsv --pieces output/gif_pieces

Run '%s <command> -h' for command-specific flags.
`, programName, programName, programName, programName, programName, programName)
}
