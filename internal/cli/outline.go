package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/deckforge-backend/internal/domain/outline"
	pipelines "github.com/yungbote/deckforge-backend/internal/jobs/pipeline"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
	"github.com/yungbote/deckforge-backend/internal/render"
	"github.com/yungbote/deckforge-backend/internal/services"
)

const credentialEnv = "DECKFORGE_CREDENTIAL"

type outlineFlags struct {
	provider   string
	credential string
	file       string
	guidance   string
	tone       string
}

func (f *outlineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.provider, "provider", "p", "openai", "LLM provider (openai, anthropic, gemini)")
	cmd.Flags().StringVar(&f.credential, "credential", "", "provider API key (defaults to $"+credentialEnv+")")
	cmd.Flags().StringVarP(&f.file, "file", "f", "-", "input text file, - for stdin")
	cmd.Flags().StringVar(&f.guidance, "guidance", "", "optional guidance for the outline")
	cmd.Flags().StringVar(&f.tone, "tone", "", "optional tone")
}

func (f *outlineFlags) request(stdin io.Reader) (services.OutlineRequest, error) {
	var (
		text []byte
		err  error
	)
	if f.file == "" || f.file == "-" {
		text, err = io.ReadAll(stdin)
	} else {
		text, err = os.ReadFile(f.file)
	}
	if err != nil {
		return services.OutlineRequest{}, fmt.Errorf("read input: %w", err)
	}
	credential := strings.TrimSpace(f.credential)
	if credential == "" {
		credential = strings.TrimSpace(os.Getenv(credentialEnv))
	}
	return services.OutlineRequest{
		Text:       string(text),
		Guidance:   f.guidance,
		Tone:       f.tone,
		Provider:   f.provider,
		Credential: credential,
	}, nil
}

func generate(ctx context.Context, log *logger.Logger, gen services.OutlineGenerator, req services.OutlineRequest) (*outline.SlideOutline, error) {
	o, err := gen.Generate(ctx, req)
	if err != nil {
		log.Debug("Outline generation failed", "provider", req.Provider, "error", err)
		return nil, err
	}
	return o, nil
}

func newOutlineCommand() *cobra.Command {
	var flags outlineFlags
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Generate a slide outline and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			o, err := generate(cmd.Context(), log, newGenerator(log, cfg), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(o)
		},
	}
	flags.register(cmd)
	return cmd
}

func newRenderCommand() *cobra.Command {
	var (
		flags    outlineFlags
		template string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate an outline and render it to a .pptx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if template != "" && !strings.EqualFold(filepath.Ext(template), ".pptx") {
				return services.InvalidTemplateError("template file must be a .pptx file")
			}
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}
			o, err := generate(cmd.Context(), log, newGenerator(log, cfg), req)
			if err != nil {
				return err
			}
			if out == "" {
				out = pipelines.DeckFileName(o.Title)
			}

			res, err := render.New(log, render.DefaultStyle()).Render(cmd.Context(), o, template, out)
			if err != nil {
				var re *render.Error
				if errors.As(err, &re) {
					return fmt.Errorf("presentation creation failed: %w", err)
				}
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Wrote %s (%d slides)\n", res.Path, res.SlideCount)
			for _, warn := range res.Warnings {
				fmt.Fprintf(w, "warning: slide %d: %s\n", warn.Slide, warn.Message)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&template, "template", "t", "", "optional .pptx template")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (defaults to a name derived from the title)")
	return cmd
}

func newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported LLM providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			for _, p := range newGenerator(log, cfg).Providers() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-10s %s\n", p.Key, p.Name, p.Model)
			}
			return nil
		},
	}
}
