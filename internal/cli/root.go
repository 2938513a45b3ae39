package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/deckforge-backend/internal/app"
	"github.com/yungbote/deckforge-backend/internal/config"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
	"github.com/yungbote/deckforge-backend/internal/services"
)

// Overridden in tests.
var (
	loadConfig   = config.Load
	newGenerator = func(log *logger.Logger, cfg *config.Config) services.OutlineGenerator {
		return app.NewGenerator(log, cfg)
	}
)

// NewRootCommand builds the deckforge command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "deckforge",
		Short:         "Turn text into PowerPoint decks with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(
		newServeCommand(),
		newOutlineCommand(),
		newRenderCommand(),
		newProvidersCommand(),
		newVersionCommand(),
	)
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and a logger for one-shot commands.
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.Version)
		},
	}
}
