package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/gitql-go/gitql"
	"github.com/gitql-go/gitql/config"
	"github.com/gitql-go/gitql/printer"
	"github.com/gitql-go/gitql/provider/gitprovider"
)

var version = "dev"

const (
	exitOK         = 0
	exitDiagnostic = 1
	exitRuntime    = 2
	exitUsage      = 3
)

type options struct {
	Repos      []string `short:"r" long:"repo" description:"Path of a git repository to query (repeatable)" value-name:"path"`
	Query      string   `short:"q" long:"query" description:"Query to run; omit for an interactive session" value-name:"query"`
	Format     string   `short:"f" long:"format" description:"Output format (table, json, csv)" value-name:"format"`
	Config     string   `long:"config" description:"YAML config file (default ~/.gitql.yml)" value-name:"file"`
	Pagination bool     `long:"pagination" description:"Paginate table output"`
	PageSize   int      `long:"page-size" description:"Rows per page when paginating" value-name:"n"`
	Debug      bool     `long:"debug" description:"Pretty-print the parsed statements before executing"`
	Version    bool     `long:"version" description:"Show the version"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	initSlog()

	var opts options
	flagParser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	flagParser.Usage = "[options]"
	if _, err := flagParser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			return exitOK
		}
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	if opts.Version {
		fmt.Println(version)
		return exitOK
	}

	configPath := opts.Config
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	cfg.Apply(config.Config{
		Repos:      opts.Repos,
		Format:     opts.Format,
		Pagination: opts.Pagination,
		PageSize:   opts.PageSize,
	})
	if len(cfg.Repos) == 0 {
		cfg.Repos = []string{"."}
	}

	p, err := gitprovider.Open(cfg.Repos...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	out, err := makePrinter(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	session := gitql.NewSession(p)
	if opts.Query != "" {
		return runQuery(session, out, opts.Query, opts.Debug)
	}
	return repl(session, out, opts.Debug)
}

// initSlog configures slog based on the LOG_LEVEL environment variable.
func initSlog() {
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return
	}
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func makePrinter(cfg config.Config) (printer.OutputPrinter, error) {
	switch cfg.Format {
	case "", "table":
		return &printer.TablePrinter{
			Out:        os.Stdout,
			In:         os.Stdin,
			Pagination: cfg.Pagination,
			PageSize:   cfg.PageSize,
		}, nil
	case "json":
		return &printer.JSONPrinter{Out: os.Stdout}, nil
	case "csv":
		return &printer.CSVPrinter{Out: os.Stdout}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", cfg.Format)
}

func runQuery(session *gitql.Session, out printer.OutputPrinter, query string, debug bool) int {
	queries, diag := session.Parse(query)
	if diag != nil {
		fmt.Fprintln(os.Stderr, diag.Error())
		return exitDiagnostic
	}
	if debug {
		pp.Fprintln(os.Stderr, queries)
	}
	result, diag := session.ExecuteParsed(queries)
	if diag != nil {
		fmt.Fprintln(os.Stderr, diag.Error())
		return exitRuntime
	}
	if err := out.Print(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitRuntime
	}
	return exitOK
}

// repl reads queries line by line. With a terminal on stdin it prompts;
// piped input runs silently.
func repl(session *gitql.Session, out printer.OutputPrinter, debug bool) int {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Printf("gitql %s\nType exit to quit.\n", version)
	}

	status := exitOK
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("gql> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		status = runQuery(session, out, line, debug)
	}
	if !interactive {
		return status
	}
	return exitOK
}
