package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ziadkadry99/chatdbg/internal/chat"
	"github.com/ziadkadry99/chatdbg/internal/config"
	"github.com/ziadkadry99/chatdbg/internal/progress"
	"github.com/ziadkadry99/chatdbg/internal/trace"
	"github.com/ziadkadry99/chatdbg/internal/transport"
)

var (
	cfgFile string
	verbose bool

	flagURL          string
	flagModel        string
	flagAPIToken     string
	flagAPITokenEnv  string
	flagTemperature  float64
	flagTopP         float64
	flagTopK         int
	flagMaxTokens    int
	flagReasoning    string
	flagExtraParams  string
	flagTimeout      float64
	flagInitialInput string
	flagTraceDB      string
	flagRender       bool
)

var rootCmd = &cobra.Command{
	Use:   "chatdbg",
	Short: "Interactive debugger for OpenAI-compatible chat endpoints",
	Long: `chatdbg opens an interactive session against any OpenAI-compatible
chat-completions endpoint. Type messages to send them with the configured
sampling parameters, inspect and edit the running conversation with slash
commands, or drop to raw mode to POST arbitrary request bodies.`,
	SilenceUsage: true,
	RunE:         runSession,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".chatdbg.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	f := rootCmd.Flags()
	f.StringVar(&flagURL, "url", "", "full chat/completions endpoint URL")
	f.StringVar(&flagModel, "model", "", "model name to send in the payload")
	f.StringVar(&flagAPIToken, "api-token", "", "API token; falls back to the env var named by --api-token-env")
	f.StringVar(&flagAPITokenEnv, "api-token-env", config.DefaultAPITokenEnv, "env var consulted when --api-token is not set")
	f.Float64Var(&flagTemperature, "temperature", 0.7, "sampling temperature")
	f.Float64Var(&flagTopP, "top-p", 1.0, "nucleus sampling probability")
	f.IntVar(&flagTopK, "top-k", 0, "optional provider-specific top_k")
	f.IntVar(&flagMaxTokens, "max-tokens", 512, "maximum tokens in the reply")
	f.StringVar(&flagReasoning, "reasoning-effort", "", "optional reasoning effort: low, medium or high")
	f.StringVar(&flagExtraParams, "extra-params", "", "JSON object merged into every request payload")
	f.Float64Var(&flagTimeout, "timeout", 60.0, "request timeout in seconds")
	f.StringVar(&flagInitialInput, "initial-input", "", "message sent before entering interactive mode")
	f.StringVar(&flagTraceDB, "trace-db", "", "SQLite file recording every exchange")
	f.BoolVar(&flagRender, "render", false, "render assistant replies as terminal markdown")
}

// buildConfig layers the config file, CHATDBG_* env overrides and CLI flags,
// flags winning. Only flags the user actually set override the lower layers.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("url") {
		cfg.URL = flagURL
	}
	if f.Changed("model") {
		cfg.Model = flagModel
	}
	if f.Changed("api-token") {
		cfg.APIToken = flagAPIToken
	}
	if f.Changed("api-token-env") {
		cfg.APITokenEnv = flagAPITokenEnv
	}
	if f.Changed("temperature") {
		cfg.Temperature = flagTemperature
	}
	if f.Changed("top-p") {
		cfg.TopP = flagTopP
	}
	if f.Changed("top-k") {
		cfg.TopK = flagTopK
	}
	if f.Changed("max-tokens") {
		cfg.MaxTokens = flagMaxTokens
	}
	if f.Changed("reasoning-effort") {
		cfg.ReasoningEffort = flagReasoning
	}
	if f.Changed("timeout") {
		cfg.TimeoutSeconds = flagTimeout
	}
	if f.Changed("initial-input") {
		cfg.InitialInput = flagInitialInput
	}
	if f.Changed("trace-db") {
		cfg.TraceDB = flagTraceDB
	}
	if f.Changed("render") {
		cfg.Render = flagRender
	}
	if f.Changed("extra-params") {
		extra, err := config.ParseExtraParams(flagExtraParams)
		if err != nil {
			return nil, err
		}
		cfg.ExtraParams = extra
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	tr := transport.NewHTTPTransport(cfg.Timeout())

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	var reader chat.LineReader
	if interactive {
		reader = chat.PromptReader{}
	} else {
		reader = chat.NewScanReader(os.Stdin, os.Stdout)
	}

	session := chat.NewSession(cfg, tr, reader, os.Stdout, os.Stderr)
	session.SetVerbose(verbose)
	if interactive {
		session.SetIndicator(progress.NewSpinner("waiting for " + cfg.Model))
	}

	if cfg.TraceDB != "" {
		recorder, err := trace.Open(cfg.TraceDB)
		if err != nil {
			return fmt.Errorf("opening trace database: %w", err)
		}
		defer recorder.Close()
		session.SetRecorder(recorder)
	}

	return session.Run(context.Background())
}
