package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bilal1975873/DPL-RECEP-back/internal/api"
	"github.com/bilal1975873/DPL-RECEP-back/internal/directory"
	"github.com/bilal1975873/DPL-RECEP-back/internal/flow"
	"github.com/bilal1975873/DPL-RECEP-back/internal/genai"
	"github.com/bilal1975873/DPL-RECEP-back/internal/lockfile"
	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
	"github.com/bilal1975873/DPL-RECEP-back/internal/notify"
	"github.com/bilal1975873/DPL-RECEP-back/internal/store"
	"github.com/bilal1975873/DPL-RECEP-back/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for reception state data
	DefaultStateDir = "/var/lib/receptionist"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "receptionist.db"
	// CLISessionKey is the session store key used by the interactive loop
	CLISessionKey = "cli"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Single-instance guard for file-based state
	if *flags.dbDSN != "" && store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		lock, err := lockfile.AcquireLock(filepath.Dir(*flags.dbDSN))
		if err != nil {
			slog.Error("Failed to acquire state directory lock", "error", err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	engine, err := buildEngine(config, flags, st)
	if err != nil {
		slog.Error("Failed to initialize dialog engine", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *flags.cli {
		runCLI(ctx, engine, st)
		return
	}

	server, err := api.NewServer(engine, st, buildAPIOptions(flags)...)
	if err != nil {
		slog.Error("Failed to initialize API server", "error", err)
		os.Exit(1)
	}
	slog.Info("Bootstrapping reception service")
	if err := server.Start(ctx); err != nil {
		slog.Error("Reception service failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Reception service exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL       string
	StateDir          string
	OpenAIKey         string
	APIAddr           string
	AllowedOrigin     string
	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string
	TeamsSenderEmail  string
	TwilioAccountSID  string
	FuzzyThreshold    int
}

// Flags holds command line flag values
type Flags struct {
	cli            *bool
	stateDir       *string
	dbDSN          *string
	openaiKey      *string
	apiAddr        *string
	allowedOrigin  *string
	fuzzyThreshold *int
}

// initializeLogger sets up structured logging. Debug level by default;
// RECEPTION_DEBUG=false drops to info.
func initializeLogger() {
	level := slog.LevelDebug
	if !util.ParseBoolEnv("RECEPTION_DEBUG", true) {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		StateDir:          os.Getenv("RECEPTION_STATE_DIR"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		APIAddr:           os.Getenv("API_ADDR"),
		AllowedOrigin:     os.Getenv("ALLOWED_ORIGIN"),
		GraphTenantID:     os.Getenv("GRAPH_TENANT_ID"),
		GraphClientID:     os.Getenv("GRAPH_CLIENT_ID"),
		GraphClientSecret: os.Getenv("GRAPH_CLIENT_SECRET"),
		TeamsSenderEmail:  os.Getenv("TEAMS_SENDER_EMAIL"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		FuzzyThreshold:    util.ParseIntEnv("FUZZY_THRESHOLD", flow.DefaultFuzzyThreshold),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No RECEPTION_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("RECEPTION_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"RECEPTION_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"GRAPH_CONFIGURED", config.GraphTenantID != "" && config.GraphClientID != "" && config.GraphClientSecret != "",
		"TWILIO_CONFIGURED", config.TwilioAccountSID != "",
		"FUZZY_THRESHOLD", config.FuzzyThreshold)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		cli:            flag.Bool("cli", false, "run the interactive reception loop on stdin instead of the HTTP API"),
		stateDir:       flag.String("state-dir", config.StateDir, "state directory for reception data (overrides $RECEPTION_STATE_DIR)"),
		dbDSN:          flag.String("db-dsn", config.DatabaseURL, "database DSN: SQLite path or postgres:// URL (overrides $DATABASE_URL)"),
		openaiKey:      flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:        flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		allowedOrigin:  flag.String("allowed-origin", config.AllowedOrigin, "CORS allowed origin (overrides $ALLOWED_ORIGIN)"),
		fuzzyThreshold: flag.Int("fuzzy-threshold", config.FuzzyThreshold, "minimum 0-100 score for host name matching (overrides $FUZZY_THRESHOLD)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"cli", *flags.cli,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"fuzzyThreshold", *flags.fuzzyThreshold)

	// Follow the state directory when the DSN still points at the default
	// SQLite location
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// buildStore selects and opens the persistence backend based on the DSN.
func buildStore(flags Flags) (store.Store, error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))
}

// buildEngine wires the dialog engine with whichever collaborators the
// environment configures. Missing collaborators degrade gracefully: no
// renderer means fixed prompts, no directory means host lookup reports the
// directory as unavailable, no notifier means hosts are not pinged.
func buildEngine(config Config, flags Flags, st store.Store) (*flow.Engine, error) {
	engineOpts := []flow.Option{
		flow.WithStore(st),
		flow.WithResolverThreshold(*flags.fuzzyThreshold),
	}

	if *flags.openaiKey != "" {
		gaClient, err := genai.NewClient(genai.WithAPIKey(*flags.openaiKey))
		if err != nil {
			slog.Error("Failed to initialize GenAI client", "error", err)
			return nil, err
		}
		engineOpts = append(engineOpts, flow.WithRenderer(flow.NewGenAIRenderer(gaClient)))
		slog.Debug("GenAI renderer configured")
	}

	graphConfigured := config.GraphTenantID != "" && config.GraphClientID != "" && config.GraphClientSecret != ""
	if graphConfigured {
		graph, err := directory.NewGraphClient(
			directory.WithTenantID(config.GraphTenantID),
			directory.WithClientID(config.GraphClientID),
			directory.WithClientSecret(config.GraphClientSecret),
		)
		if err != nil {
			slog.Error("Failed to initialize Graph client", "error", err)
			return nil, err
		}
		engineOpts = append(engineOpts, flow.WithDirectory(graph), flow.WithCalendar(graph), flow.WithScheduler(graph))
		slog.Debug("Graph directory, calendar and scheduler configured")
	}

	if notifier := buildNotifier(config, graphConfigured); notifier != nil {
		engineOpts = append(engineOpts, flow.WithNotifier(notifier))
	}

	return flow.NewEngine(engineOpts...)
}

// buildNotifier picks the notification channel: Teams chat when Graph is
// configured with a sender account, Twilio SMS as the fallback.
func buildNotifier(config Config, graphConfigured bool) notify.Notifier {
	if graphConfigured && config.TeamsSenderEmail != "" {
		teams, err := notify.NewTeamsNotifier(
			notify.WithTenantID(config.GraphTenantID),
			notify.WithClientID(config.GraphClientID),
			notify.WithClientSecret(config.GraphClientSecret),
			notify.WithSenderEmail(config.TeamsSenderEmail),
		)
		if err != nil {
			slog.Error("Failed to initialize Teams notifier", "error", err)
			return nil
		}
		slog.Debug("Teams notifier configured")
		return teams
	}
	if config.TwilioAccountSID != "" {
		sms, err := notify.NewSMSNotifier()
		if err != nil {
			slog.Error("Failed to initialize Twilio SMS notifier", "error", err)
			return nil
		}
		slog.Debug("Twilio SMS notifier configured")
		return sms
	}
	slog.Debug("No notifier configured, host notifications disabled")
	return nil
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.allowedOrigin != "" {
		apiOpts = append(apiOpts, api.WithAllowedOrigin(*flags.allowedOrigin))
	}
	return apiOpts
}

// runCLI drives the dialog engine from stdin: one line per turn, session
// state persisted between turns, a fresh session after each completed
// registration. Type quit or exit to leave.
func runCLI(ctx context.Context, engine *flow.Engine, st store.Store) {
	sessions := flow.NewStoreSessionStore(st)

	state, err := sessions.Load(ctx, CLISessionKey)
	if err != nil || state == nil {
		state = models.NewDialogState()
	}

	fmt.Println(flow.Welcome)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}

		reply, err := engine.Step(ctx, state, line)
		if err != nil {
			slog.Error("Turn failed", "error", err)
			fmt.Println(flow.MsgSaveFailed)
			continue
		}
		fmt.Println(reply)

		if state.CurrentStep == flow.StepComplete {
			if err := sessions.Delete(ctx, CLISessionKey); err != nil {
				slog.Debug("Failed to clear completed session", "error", err)
			}
			state = models.NewDialogState()
			fmt.Println()
			fmt.Println(flow.Welcome)
			continue
		}
		if err := sessions.Save(ctx, CLISessionKey, state); err != nil {
			slog.Debug("Failed to persist session", "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("stdin read failed", "error", err)
	}
}
