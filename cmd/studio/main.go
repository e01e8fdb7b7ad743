package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"studio/internal/history"
	"studio/internal/infra"
)

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	cfg     *infra.Config
	logger  infra.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:   "studio",
		Short: "Style photos with a prompt and keep the last few results",
		Long: `studio sends a photo, a prompt and a visual style to the image generation
backend, retrying automatically when the model is overloaded. The five most
recent results are kept in history.

Examples:
  studio generate --image portrait.jpg --prompt "rainy neon street" --style streetwear
  studio history list
  studio history export --out looks.zip`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = infra.NewCLILogger(cfg.AppEnv, a.verbose)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(newGenerateCmd(a), newHistoryCmd(a), newStylesCmd(a))
	return root
}

// openStore opens the configured history medium. The close function is never
// nil.
func (a *app) openStore(ctx context.Context) (*history.Store, func(), error) {
	medium, closeFn, err := history.OpenMedium(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, closeFn, err
	}
	return history.NewStore(medium, history.Options{Key: a.cfg.HistoryKey, Logger: &a.logger}), closeFn, nil
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
