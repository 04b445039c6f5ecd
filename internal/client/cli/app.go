package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dmitrijs2005/sealnote/internal/client/client"
	"github.com/dmitrijs2005/sealnote/internal/client/config"
	"github.com/dmitrijs2005/sealnote/internal/client/services"
	"github.com/dmitrijs2005/sealnote/internal/cryptox"
	"github.com/dmitrijs2005/sealnote/internal/logging"
)

type App struct {
	config *config.Config
	local  services.LocalService
	share  services.ShareService
	cipher *cryptox.Cipher
	clock  clock.Clock
	log    logging.Logger
	db     *sql.DB

	reader   *bufio.Reader
	out      io.Writer
	outMu    sync.Mutex
	terminal bool
}

// NewApp builds the application from cfg. A history database that cannot be
// opened is logged and the app runs without history.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	scheme, err := cryptox.ParseScheme(cfg.CipherScheme)
	if err != nil {
		return nil, err
	}
	cipher := cryptox.New(scheme)

	apiClient, err := client.NewHTTPClient(cfg.BackendURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRetry(cfg.MaxRetries, cfg.RetryBaseDelay),
		client.WithRateLimit(cfg.RequestsPerSecond),
		client.WithOrigin(cfg.Origin()),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, cfg.HistoryDB)
	if err != nil {
		log.Warn(ctx, "link history disabled", "path", cfg.HistoryDB, "error", err)
		db = nil
	}

	clk := clock.New()
	return &App{
		config:   cfg,
		local:    services.NewLocalService(cipher, log),
		cipher:   cipher,
		share:    services.NewShareService(apiClient, cipher, db, services.WithClock(clk), services.WithShareLogger(log)),
		clock:    clk,
		log:      log,
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		terminal: isTerminal(int(os.Stdin.Fd())),
	}, nil
}

// Run starts the REPL and blocks until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println("sealnote CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) status() string {
	st := a.config.BackendURL + " " + a.cipher.Scheme().String()
	if a.db == nil {
		st += " no-history"
	}
	return st
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
