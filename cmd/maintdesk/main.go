// The `maintdesk` CLI talks to a maintenance-ticketing backend: login and
// session handling, equipment and repair tickets, technician assignment, and
// the admin-side user management.
//
// Usage:
//
//	maintdesk login --username <name>    — authenticate and store the session
//	maintdesk requests list              — list maintenance requests
//	maintdesk equipment list             — list registered equipment
//	maintdesk dashboard                  — combined summary
//	maintdesk version                    — version info
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/maintdesk/maintdesk/internal/api"
	"github.com/maintdesk/maintdesk/internal/config"
	"github.com/maintdesk/maintdesk/internal/session"
	"github.com/maintdesk/maintdesk/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliConfig struct {
	apiURL     string
	configPath string
	jsonOutput bool
	verbose    bool
}

// app bundles the wired pieces every command needs.
type app struct {
	client  *api.Client
	manager *session.Manager
	cfg     cliConfig
}

func main() {
	cfg, command, args, err := parseArgs(os.Args[1:])
	if errors.Is(err, errShowUsage) {
		printUsage()
		if len(os.Args) == 1 {
			os.Exit(1)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	if command == "version" {
		fmt.Printf("maintdesk %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	if command == "help" || command == "--help" || command == "-h" {
		printUsage()
		return
	}

	log := logr.Discard()
	if cfg.verbose {
		log = funcr.New(func(prefix, args string) {
			fmt.Fprintln(os.Stderr, prefix, args)
		}, funcr.Options{Verbosity: 1})
	}

	fileCfg, err := loadConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if fileCfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.InitTraceProvider(ctx, fileCfg.OTLPEndpoint, version)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = shutdown(ctx) }()
	}

	a, err := buildApp(cfg, fileCfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "login":
		err = runLogin(ctx, a, args)
	case "logout":
		err = runLogout(a, args)
	case "register":
		err = runRegister(ctx, a, args)
	case "refresh":
		err = runRefresh(ctx, a, args)
	case "whoami", "me":
		err = runWhoAmI(a, args)
	case "equipment", "eq":
		err = runEquipment(ctx, a, args)
	case "requests", "request", "req":
		err = runRequests(ctx, a, args)
	case "users", "user":
		err = runUsers(ctx, a, args)
	case "technicians", "techs":
		err = runTechnicians(ctx, a, args)
	case "dashboard", "dash":
		err = runDashboard(ctx, a, args)
	default:
		err = fmt.Errorf("unknown command: %s", command)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, api.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "run 'maintdesk login' to start a new session")
		}
		os.Exit(1)
	}
}

var errShowUsage = errors.New("show usage")

func parseArgs(args []string) (cliConfig, string, []string, error) {
	cfg := cliConfig{}

	idx := 0
	for idx < len(args) {
		arg := args[idx]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		switch arg {
		case "--help", "-h":
			return cfg, "", nil, errShowUsage
		case "--api-url", "-a":
			if idx+1 >= len(args) {
				return cfg, "", nil, fmt.Errorf("--api-url requires a value")
			}
			cfg.apiURL = args[idx+1]
			idx += 2
		case "--config":
			if idx+1 >= len(args) {
				return cfg, "", nil, fmt.Errorf("--config requires a value")
			}
			cfg.configPath = args[idx+1]
			idx += 2
		case "--json":
			cfg.jsonOutput = true
			idx++
		case "--verbose", "-v":
			cfg.verbose = true
			idx++
		default:
			return cfg, "", nil, fmt.Errorf("unknown flag: %s", arg)
		}
	}

	if idx >= len(args) {
		return cfg, "", nil, errShowUsage
	}

	return cfg, args[idx], args[idx+1:], nil
}

func loadConfig(cfg cliConfig) (config.Config, error) {
	path := cfg.configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	fileCfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.apiURL != "" {
		fileCfg.BaseURL = strings.TrimSuffix(cfg.apiURL, "/")
	}
	return fileCfg, nil
}

func buildApp(cfg cliConfig, fileCfg config.Config, log logr.Logger) (*app, error) {
	path, err := session.DefaultSessionPath()
	if err != nil {
		return nil, err
	}
	kv, err := session.NewFileKV(path)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(kv, log)

	client := api.NewClient(fileCfg.BaseURL, store,
		api.WithLogger(log),
		api.WithHTTPClient(httpClientWithTimeout(fileCfg)),
	)
	manager := session.NewManager(store, client, log)

	return &app{client: client, manager: manager, cfg: cfg}, nil
}

func httpClientWithTimeout(fileCfg config.Config) *http.Client {
	return &http.Client{Timeout: fileCfg.Timeout()}
}

func printUsage() {
	fmt.Print(`Usage: maintdesk [--api-url <url>] [--config <path>] [--json] [-v] <command>

Commands:
  login --username <name> [--password <pw>]
                              Authenticate and store the session
  logout                      Discard the stored session
  register --username <name> --email <email> [--password <pw>]
                              Create a new account
  refresh                     Exchange the refresh token for a new access token
  whoami                      Show the stored identity and its permissions

  equipment list [--status <s>] [--department <d>] [--search <q>]
  equipment get <id>
  equipment create --code <c> --name <n> --department <d> --location <l>
  equipment delete <id>
  equipment history <id>      Maintenance history for one piece of equipment
  equipment stats

  requests list [--status <s>] [--priority <p>] [--mine] [--search <q>]
  requests get <id>
  requests create --equipment <id> --problem <text> [--priority <p>] [--image <file>]
  requests delete <id>
  requests status <id> <status> [comment]
  requests assign <id> <technician-id> [comment]
  requests urgent
  requests stats

  users list [--role <r>] [--search <q>]
  users get <id>
  users role <id> <role>      Change an account's role
  users delete <id>
  technicians list [--available] [--expertise <e>]

  dashboard                   Combined summary
  version                     Show version info
`)
}
