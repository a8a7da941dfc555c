package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex"
	"github.com/kailas-cloud/recodex/internal/config"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	"github.com/kailas-cloud/recodex/internal/version"
)

type globalFlags struct {
	env        string
	addr       string
	password   string
	prefix     string
	standalone bool
	verbose    bool
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "recodexctl",
		Short:         "recodex catalog and recommendation tool",
		Long:          "Create the product index, load product feeds and run recommendations against a recodex catalog.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&g.env, "env", config.GetEnv(), "config environment used for unset connection flags")
	f.StringVar(&g.addr, "redis", os.Getenv("REDIS_ADDR"), "Redis address (host:port)")
	f.StringVar(&g.password, "password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	f.StringVar(&g.prefix, "prefix", "", "catalog key prefix (default from config or \"recodex:\")")
	f.BoolVar(&g.standalone, "standalone", false, "skip cluster topology discovery")
	f.BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	f.DurationVar(&g.timeout, "timeout", 5*time.Minute, "overall command timeout")

	cmd.AddCommand(newIndexCmd(g), newIngestCmd(g), newRecommendCmd(g))
	return cmd
}

// client connects using flags, falling back to the config file for anything unset.
func (g *globalFlags) client(extra ...recodex.Option) (*recodex.Client, error) {
	level := "warn"
	if g.verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger("local", level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	addr, password, prefix, standalone := g.addr, g.password, g.prefix, g.standalone
	var llm *config.LLMConfig
	if cfg, err := config.Load(g.env); err == nil {
		if addr == "" && len(cfg.Database.Addrs) > 0 {
			addr = cfg.Database.Addrs[0]
			if password == "" {
				password = cfg.Database.Password
			}
		}
		if prefix == "" {
			prefix = cfg.Database.KeyPrefix
		}
		standalone = standalone || cfg.Database.Standalone
		if cfg.LLM.Enabled() {
			llm = &cfg.LLM
		}
	} else {
		logger.Debug("config not loaded, using flags only", zap.Error(err))
	}
	if addr == "" {
		return nil, fmt.Errorf("redis address required (--redis or REDIS_ADDR)")
	}

	opts := []recodex.Option{
		recodex.WithRedis(addr, password),
		recodex.WithKeyPrefix(prefix),
		recodex.WithLogger(logger),
	}
	if standalone {
		opts = append(opts, recodex.WithStandalone())
	}
	if llm != nil {
		opts = append(opts, recodex.WithLLM(recodex.LLMConfig{
			APIKey:      llm.APIKey,
			BaseURL:     llm.BaseURL,
			Model:       llm.Model,
			Temperature: llm.Temperature,
			Timeout:     time.Duration(llm.TimeoutSec) * time.Second,
		}))
	}
	return recodex.New(append(opts, extra...)...)
}
