package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/relay/internal/config"
	"github.com/rzbill/relay/internal/journal"
	"github.com/rzbill/relay/internal/runtime"
	"github.com/rzbill/relay/pkg/channels"
	logpkg "github.com/rzbill/relay/pkg/log"
)

// LoadConfig resolves configuration from path, or the default config path
// when it exists, then overlays the environment.
func LoadConfig(path string) (cfgpkg.Config, error) {
	if path == "" {
		if p := cfgpkg.DefaultConfigPath(); cfgpkg.Exists(p) {
			path = p
		}
	}
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	return cfg, cfg.Validate()
}

// NewEmitCommand returns `relay emit`. logger may be nil to build one from
// the loaded configuration.
func NewEmitCommand(logger logpkg.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Dispatch payloads through a channel and print listener deliveries",
		Long: "Opens an in-process relay, subscribes printing listeners to a channel, " +
			"dispatches each --data payload and waits for all deliveries. Listeners receive " +
			"the store state (--state while the store is empty), not the payload.",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			name, _ := cmd.Flags().GetString("channel")
			payloads, _ := cmd.Flags().GetStringArray("data")
			stateJSON, _ := cmd.Flags().GetString("state")
			listeners, _ := cmd.Flags().GetInt("listeners")
			where, _ := cmd.Flags().GetString("where")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			initial, err := decodeObject(stateJSON)
			if err != nil {
				return errors.Wrap(err, "invalid --state")
			}
			rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger, InitialState: initial})
			if err != nil {
				return err
			}
			defer rt.Close()

			ch, err := rt.Channel(name)
			if err != nil {
				return err
			}
			out := &lockedWriter{w: cmd.OutOrStdout()}
			for i := 1; i <= listeners; i++ {
				if _, err := ch.SubscribeWhere(where, printer(out, i)); err != nil {
					return err
				}
			}
			if len(payloads) == 0 {
				payloads = []string{"{}"}
			}
			for _, raw := range payloads {
				data, err := decodeObject(raw)
				if err != nil {
					return errors.Wrapf(err, "invalid --data %q", raw)
				}
				if _, err := ch.Dispatch(data); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := rt.Drain(ctx); err != nil {
				return errors.Wrap(err, "waiting for listeners")
			}
			if j := rt.Journal(); j != nil {
				return printJournal(out, j)
			}
			return nil
		},
	}
	cmd.Flags().String("config", "", "Config file (JSON); defaults to the user config dir if present")
	cmd.Flags().String("channel", "PING", "Channel name")
	cmd.Flags().StringArray("data", nil, "JSON object payload to dispatch (repeatable)")
	cmd.Flags().String("state", "", "JSON object used as the initial state")
	cmd.Flags().Int("listeners", 1, "Number of printing listeners to subscribe")
	cmd.Flags().String("where", "", "CEL filter over `state` and `channel` applied to every listener")
	cmd.Flags().Duration("timeout", 5*time.Second, "How long to wait for deliveries")
	return cmd
}

// NewConfigCommand returns `relay config`.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := LoadConfig(path)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
	cmd.Flags().String("config", "", "Config file (JSON)")
	return cmd
}

func decodeObject(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func printer(out io.Writer, i int) channels.Listener {
	return func(data any) {
		b, err := json.Marshal(data)
		if err != nil {
			b = []byte(fmt.Sprintf("%q", fmt.Sprint(data)))
		}
		fmt.Fprintf(out, "listener %d <- %s\n", i, b)
	}
}

func printJournal(out io.Writer, j *journal.Journal) error {
	entries, err := j.List(journal.ListOptions{})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "journal: %d action(s)\n", len(entries))
	for _, e := range entries {
		b, _ := json.Marshal(e.Action)
		fmt.Fprintf(out, "  #%d %s\n", e.Seq, b)
	}
	return nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
