package main

import (
	"fmt"
	"io"
	"os"

	sprintfLogging "github.com/core-tools/hsu-core/pkg/logging/sprintf"

	"github.com/core-tools/hsu-deploy/pkg/logging"
	"github.com/core-tools/hsu-deploy/pkg/optionsstore"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	Config   string `long:"config" description:"path to deployctl settings file (yaml, json or toml)"`
	LogLevel string `long:"log-level" description:"overrides the log.level setting"`
}

func logPrefix(module string) string {
	return fmt.Sprintf("module: %s-cli , ", module)
}

// app carries state shared by every command
type app struct {
	opts     flagOptions
	settings *Settings
	logger   logging.Logger
	out      io.Writer
	sync     func() error
}

func (a *app) init() error {
	settings, err := LoadSettings(a.opts.Config)
	if err != nil {
		return err
	}
	if a.opts.LogLevel != "" {
		settings.Log.Level = a.opts.LogLevel
	}
	a.settings = settings

	logger, sync, err := newLogger(settings.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	a.sync = sync
	return nil
}

func (a *app) openStore() (*optionsstore.SQLiteStore, error) {
	return optionsstore.NewSQLiteStore(a.settings.Store.DSN, a.logger)
}

func newLogger(settings LogSettings) (logging.Logger, func() error, error) {
	if settings.Format == "text" {
		if _, err := logging.ParseLevel(settings.Level); err != nil {
			return nil, nil, err
		}
		std := sprintfLogging.NewStdSprintfLogger()
		funcs := logging.LogFuncs{
			Infof:  std.Infof,
			Warnf:  std.Warnf,
			Errorf: std.Errorf,
		}
		if settings.Level == "debug" {
			funcs.Debugf = std.Debugf
		}
		return logging.NewLogger(logPrefix("hsu-deploy"), funcs), func() error { return nil }, nil
	}

	zapLogger, err := logging.NewZapLogger(logging.ZapConfig{
		Level:  settings.Level,
		Format: settings.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return zapLogger, zapLogger.Sync, nil
}

func newParser(a *app) (*flags.Parser, error) {
	parser := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)

	commands := []struct {
		name, short, long string
		data              flags.Commander
	}{
		{"show", "Print deployment options in compact form", "Reads a JSON or YAML options file and prints its compact encoding.", &showCommand{app: a}},
		{"equal", "Compare two deployment options files", "Exits with status 1 when the two files hold different options.", &equalCommand{app: a}},
		{"validate", "Validate a deployment descriptor", "Validates a descriptor file and lists its enabled deployments.", &validateCommand{app: a}},
		{"save", "Store deployment options under a name", "Stores options from a file in the options store.", &saveCommand{app: a}},
		{"get", "Print stored deployment options", "Prints the options stored under a name.", &getCommand{app: a}},
		{"list", "List stored deployment options", "Lists every name in the options store.", &listCommand{app: a}},
		{"delete", "Delete stored deployment options", "Removes the options stored under a name.", &deleteCommand{app: a}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			return nil, err
		}
	}

	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}
		if err := a.init(); err != nil {
			return err
		}
		defer a.sync()
		return command.Execute(args)
	}

	return parser, nil
}

func run(argv []string, out io.Writer) int {
	a := &app{out: out}
	parser, err := newParser(a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Command setup failed: %v\n", err)
		return 2
	}

	if _, err := parser.ParseArgs(argv); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(out, flagsErr.Message)
			return 0
		}
		if err == errOptionsDiffer {
			return 1
		}
		if a.logger != nil {
			a.logger.Errorf("Command failed: %v", err)
		} else {
			fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
		}
		return 2
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}
