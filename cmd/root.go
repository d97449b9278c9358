package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"roster/internal/agenthost"
	"roster/internal/app"
	"roster/internal/config"
	"roster/internal/fileindex"
	"roster/internal/log"
	"roster/internal/roster"
	"roster/internal/session"
	"roster/internal/store"
	"roster/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "roster",
	Short:   "A terminal ui for chatting with a team of coding agents",
	Long:    `A terminal user interface for composing messages to a roster of coding agents, with @-mentions, file references, slash commands, and per-agent conversation history.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .roster/config.yaml or ~/.config/roster/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write debug logs to .roster/debug.log")
	rootCmd.Flags().StringP("path", "p", "",
		"project directory (default: current directory)")

	_ = viper.BindPFlag("base_path", rootCmd.Flags().Lookup("path"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("host.binary", defaults.Host.Binary)
	viper.SetDefault("composer.depth", defaults.Composer.Depth)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.show_timestamps", defaults.UI.ShowTimestamps)
	viper.SetDefault("ui.expanded_lines", defaults.UI.ExpandedLines)
	viper.SetDefault("index.ttl_seconds", defaults.Index.TTLSeconds)
	viper.SetDefault("index.max_files", defaults.Index.MaxFiles)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		for _, path := range config.ConfigLookupPaths() {
			if _, err := os.Stat(path); err == nil {
				viper.SetConfigFile(path)
				break
			}
		}
	}

	if viper.ConfigFileUsed() != "" {
		_ = viper.ReadInConfig()
	}
	_ = viper.Unmarshal(&cfg)
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	basePath := cfg.BasePath
	if basePath == "" {
		var err error
		basePath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		cfg.BasePath = basePath
	}

	if debug || os.Getenv("ROSTER_DEBUG") != "" {
		if cleanup, err := log.Init(".roster/debug.log"); err == nil {
			defer cleanup()
		}
	}

	tracer, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	if tracer.Enabled() {
		log.Info(log.CatConfig, "tracing enabled",
			"exporter", cfg.Tracing.Exporter, "service", cfg.Tracing.ServiceName)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = tracer.Shutdown(ctx)
	}()

	rosterFile := cfg.RosterFile
	if rosterFile == "" {
		rosterFile = config.DefaultRosterFile(basePath)
	}
	team, err := roster.Load(rosterFile)
	if err != nil {
		return fmt.Errorf("loading roster: %w\nRun 'roster init' to scaffold one", err)
	}

	storePath := cfg.Store.Path
	if storePath == "" {
		storePath = config.DefaultStorePath(basePath)
	}
	messages, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("opening message store: %w", err)
	}
	defer func() { _ = messages.Close() }()

	files, err := fileindex.New(fileindex.Config{
		BasePath: basePath,
		TTL:      time.Duration(cfg.Index.TTLSeconds) * time.Second,
		MaxFiles: cfg.Index.MaxFiles,
	})
	if err != nil {
		return fmt.Errorf("creating file index: %w", err)
	}
	// Watch failures degrade to TTL-only rescans.
	_ = files.Start()

	workDir := cfg.Host.WorkDir
	if workDir == "" {
		workDir = basePath
	}
	host := agenthost.New(agenthost.Config{Binary: cfg.Host.Binary})
	services := app.NewServices(session.NewManager(host), messages, team, workDir,
		cfg.Host.SkipPermissions)

	model := app.New(cfg, viper.ConfigFileUsed(), team, services, files)

	zone.NewGlobal()
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
