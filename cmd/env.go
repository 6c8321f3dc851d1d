package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/config"
	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/store"
)

// env is everything a command needs to talk to the backend and the local
// session.
type env struct {
	cfg    config.Config
	dbPath string
	log    *logger.Logger
	store  *store.Store
	client *api.Client
	auth   *auth.Store
}

// loadConfig reads the config file and applies --api and --db on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("api"); v != "" {
		cfg.APIBase = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	return cfg, nil
}

// resolveDBPath returns the configured database path (--db, FEELIO_DB or the
// config file, in that order) or the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// logPath keeps the log next to the database unless configured otherwise.
func logPath(cfg config.Config, dbPath string) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return filepath.Join(filepath.Dir(dbPath), "feelio.log")
}

// openStore opens only the local database. Used by commands that never call
// the backend.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode, logPath(cfg, dbPath))
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	client, err := api.New(cfg.APIBase, api.WithTimeout(cfg.APITimeout), api.WithLogger(log))
	if err != nil {
		st.Close()
		return nil, err
	}

	sess, err := auth.Open(cmd.Context(), st.IdentityRepo(), client,
		auth.WithJournal(st.ActivityRepo()),
		auth.WithLogger(log),
	)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	log.Debug("environment ready", "api", cfg.APIBase, "db", dbPath)
	return &env{cfg: cfg, dbPath: dbPath, log: log, store: st, client: client, auth: sess}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.log.Sync()
}

var errNoSession = errors.New("not logged in; run `feelio login` first")

// current returns the active identity or errNoSession.
func (e *env) current() (auth.Identity, error) {
	id, ok := e.auth.Current()
	if !ok {
		return auth.Identity{}, errNoSession
	}
	return id, nil
}

// prompter reads secrets from the command's stdin. One buffered reader is
// kept for the whole command so repeated prompts see every piped line.
type prompter struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, in: bufio.NewReader(cmd.InOrStdin())}
}

// Password reads without echo when stdin is a terminal and a plain line
// otherwise, so scripts can pipe it in.
func (p *prompter) Password(label string) (string, error) {
	errOut := p.cmd.ErrOrStderr()
	fmt.Fprint(errOut, label)
	if f, ok := p.cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	if err != nil && line == "" {
		return "", errors.New("no password on stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// backendErr prefers the backend's own explanation when it sent one.
func backendErr(err error) error {
	if m := api.Message(err); m != "" {
		return fmt.Errorf("%s: %w", m, err)
	}
	return err
}
