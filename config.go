/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/eventbox/internal/draw"
	"github.com/Seednode/eventbox/internal/identity"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	enhanceTimeout time.Duration
	geminiAPIKey   string
	geminiModel    string
	logLevel       string
	maxUpload      int64
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	spinDuration   time.Duration
	spinJitter     time.Duration
	spinTick       time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.spinTick <= 0 {
		return fmt.Errorf("invalid spin tick (must be positive): %s", c.spinTick)
	}
	if c.spinDuration < 0 || c.spinJitter < 0 {
		return errors.New("spin duration and jitter must not be negative")
	}
	if c.enhanceTimeout < 0 {
		return fmt.Errorf("invalid enhance timeout (must not be negative): %s", c.enhanceTimeout)
	}
	if c.maxUpload < 1 {
		return fmt.Errorf("invalid max upload size (must be positive): %d", c.maxUpload)
	}
	if _, err := parseLevel(c.logLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// bindEnv lets every flag in fs be set from an EVENTBOX_* environment variable.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("EVENTBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "eventbox",
		Short:         "Prize draws and team builder for events, in a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return setupLogging(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.DurationVar(&cfg.enhanceTimeout, "enhance-timeout", 30*time.Second, "maximum time to wait for generated team names, 0 to disable (env: EVENTBOX_ENHANCE_TIMEOUT)")
	pfs.StringVar(&cfg.geminiAPIKey, "gemini-api-key", "", "api key for generated team names and icebreakers (env: EVENTBOX_GEMINI_API_KEY)")
	pfs.StringVar(&cfg.geminiModel, "gemini-model", identity.DefaultModel, "model used for generated team names (env: EVENTBOX_GEMINI_MODEL)")
	pfs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn, error (env: EVENTBOX_LOG_LEVEL)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: EVENTBOX_VERBOSE)")

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: EVENTBOX_BIND)")
	fs.Int64Var(&cfg.maxUpload, "max-upload", 1<<20, "maximum size in bytes of an uploaded name list (env: EVENTBOX_MAX_UPLOAD)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: EVENTBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: EVENTBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: EVENTBOX_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 4*time.Hour, "time before idle event sessions are ended (env: EVENTBOX_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.spinDuration, "spin-duration", draw.DefaultDuration, "minimum length of a draw animation (env: EVENTBOX_SPIN_DURATION)")
	fs.DurationVar(&cfg.spinJitter, "spin-jitter", draw.DefaultJitter, "random extra length added to each draw animation (env: EVENTBOX_SPIN_JITTER)")
	fs.DurationVar(&cfg.spinTick, "spin-tick", draw.DefaultTick, "interval between names shown during a draw (env: EVENTBOX_SPIN_TICK)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: EVENTBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: EVENTBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: EVENTBOX_VERSION)")

	bindEnv(v, pfs)
	bindEnv(v, fs)

	cmd.AddCommand(newTeamsCmd(cfg, v), newDrawCmd(cfg, v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("eventbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
