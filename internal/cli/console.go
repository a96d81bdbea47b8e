package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dreamdigital/landing/internal/console"
)

var (
	consoleExportDir string
	consoleStyle     string
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the terminal landing page with the hidden dashboards",
	Long: `Render the landing page in the terminal. The lead and analytics
dashboards stay hidden until the admin key sequence is entered.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("console requires an interactive terminal")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := openServices(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		site, err := loadContent(svc.cfg)
		if err != nil {
			return err
		}

		m := console.New(ctx, svc.ledger, svc.analytics, site, console.Options{
			ExportDir:     consoleExportDir,
			MarkdownStyle: consoleStyle,
		})
		return console.Run(ctx, m)
	},
}

func init() {
	consoleCmd.Flags().StringVar(&consoleExportDir, "export-dir", ".", "directory for CSV exports")
	consoleCmd.Flags().StringVar(&consoleStyle, "style", "dark", "markdown style: dark, light or notty")
}
