package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"

	"golang.org/x/term"

	"github.com/stolasapp/kangaroo/internal/config"
	"github.com/stolasapp/kangaroo/internal/intake"
	"github.com/stolasapp/kangaroo/internal/sec"
	"github.com/stolasapp/kangaroo/internal/storage"
)

type configKey struct{}

func prompt(prompt string, mask bool) ([]byte, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		if _, err := os.Stderr.WriteString(prompt); err != nil {
			return nil, err
		}
	}
	return readLine(os.Stdin, mask)
}

// cloned from term.readPasswordLine.
func readLine(stdin *os.File, mask bool) ([]byte, error) {
	if mask && term.IsTerminal(int(stdin.Fd())) {
		return term.ReadPassword(int(stdin.Fd()))
	}
	var buf [1]byte
	var ret []byte

	for {
		n, err := stdin.Read(buf[:])
		if n > 0 {
			switch buf[0] {
			case '\b':
				if len(ret) > 0 {
					ret = ret[:len(ret)-1]
				}
			case '\n':
				if runtime.GOOS != "windows" {
					return ret, nil
				}
				// otherwise ignore \n
			case '\r':
				if runtime.GOOS == "windows" {
					return ret, nil
				}
				// otherwise ignore \r
			default:
				ret = append(ret, buf[0]) //nolint:gosec // erroneous error
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(ret) > 0 {
				return ret, nil
			}
			return ret, err
		}
	}
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-dev"
	}
	ver := "unknown"
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			ver = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if dirty {
		ver += "-dev"
	}
	return ver
}

// deps are the components shared by every command, built from the resolved
// config. The store must be released with Close.
type deps struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *storage.DB
	gateway *intake.Gateway
	auth    sec.Authenticator
}

// loadDeps opens the store, applies migrations and runs the bootstrap seed.
func loadDeps(ctx context.Context) (*deps, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok {
		return nil, errors.New("config file resolution failed")
	}
	logger := slog.Default()
	hasher, err := sec.NewHasher(cfg.MaxDerivations)
	if err != nil {
		return nil, err
	}
	// a store that failed to migrate is unusable, so this aborts; seed
	// failures in Bootstrap below are only logged
	store, err := storage.NewDB(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	gw := intake.New(store, hasher, logger)
	gw.Bootstrap(ctx, intake.BootstrapOptions{SeedDemoUser: cfg.DevMode})

	return &deps{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		gateway: gw,
		auth:    sec.NewAuthenticator(gw, logger),
	}, nil
}

func (d *deps) Close() error {
	return d.store.Close()
}

// withDeps runs fn with freshly loaded deps, closing them afterwards.
func withDeps(ctx context.Context, fn func(*deps) error) (err error) {
	d, err := loadDeps(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := d.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(d)
}
