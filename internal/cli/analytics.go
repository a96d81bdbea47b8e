package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dreamdigital/landing/internal/analytics"
	"github.com/dreamdigital/landing/internal/geoip"
	"github.com/dreamdigital/landing/internal/models"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Inspect, export or reset site analytics",
}

var analyticsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the analytics summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyticsShow(analyticsFormat)
	},
}

var analyticsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the analytics summary as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyticsExport(analyticsOutput)
	},
}

var analyticsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset every analytics counter",
	Long: `Reset every analytics counter to zero. Leads are not touched.

Asks for confirmation on a terminal; pass --yes when scripting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyticsReset(analyticsYes)
	},
}

// Command flags
var (
	analyticsFormat string
	analyticsOutput string
	analyticsYes    bool
)

// stdinIsTerminal reports whether confirmations can be prompted (can be replaced in tests)
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirmInput is where confirmation answers are read from (can be replaced in tests)
var confirmInput io.Reader = os.Stdin

func init() {
	analyticsShowCmd.Flags().StringVar(&analyticsFormat, "format", "table", "output format: table, json or yaml")
	analyticsExportCmd.Flags().StringVarP(&analyticsOutput, "output", "o", "", "output file, - for stdout")
	analyticsResetCmd.Flags().BoolVarP(&analyticsYes, "yes", "y", false, "skip the confirmation prompt")

	analyticsCmd.AddCommand(analyticsShowCmd)
	analyticsCmd.AddCommand(analyticsExportCmd)
	analyticsCmd.AddCommand(analyticsResetCmd)
}

// analyticsSummary is the machine readable form of "analytics show"
type analyticsSummary struct {
	Record     models.AnalyticsRecord `json:"analytics" yaml:"analytics"`
	TopBrowser string                 `json:"topBrowser" yaml:"top_browser"`
	TopDevice  string                 `json:"topDevice" yaml:"top_device"`
	TopCountry string                 `json:"topCountry" yaml:"top_country"`
	Browsers   []analytics.Tally      `json:"browsers" yaml:"browsers"`
	Countries  []analytics.Tally      `json:"countries" yaml:"countries"`
}

func runAnalyticsShow(format string) error {
	if err := validateFormat(format, "table", "json", "yaml"); err != nil {
		return err
	}

	return withServices(func(ctx context.Context, svc *services) error {
		rec := svc.analytics.Snapshot(ctx)
		summary := analyticsSummary{
			Record:     rec,
			TopBrowser: analytics.TopBrowser(rec),
			TopDevice:  analytics.TopDevice(rec),
			TopCountry: analytics.TopCountry(rec),
			Browsers:   analytics.Ranked(rec.Browsers),
			Countries:  analytics.Ranked(rec.Countries),
		}

		switch format {
		case "json":
			return printJSON(summary)
		case "yaml":
			return printYAML(summary)
		}

		fmt.Println("\nTraffic")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "  Page views\t%d\n", rec.TotalPageViews)
		_, _ = fmt.Fprintf(w, "  Unique visitors\t%d\n", rec.UniqueVisitors)
		_, _ = fmt.Fprintf(w, "  Sessions\t%d\n", rec.Sessions)
		_, _ = fmt.Fprintf(w, "  Bounce rate\t%.2f%%\n", rec.BounceRate)
		_, _ = fmt.Fprintf(w, "  Pages per session\t%.2f\n", rec.PagesPerSession)
		_, _ = fmt.Fprintf(w, "  Average time on site\t%s\n", analytics.FormatDuration(rec.AverageTimeOnSite))
		_, _ = fmt.Fprintf(w, "  Average load time\t%.2fms\n", rec.AverageLoadTime)
		_, _ = fmt.Fprintf(w, "  Sources\tdirect %d, search %d, social %d, referral %d\n",
			rec.DirectTraffic, rec.SearchTraffic, rec.SocialTraffic, rec.ReferralTraffic)
		_, _ = fmt.Fprintf(w, "  Devices\tmobile %d, desktop %d, tablet %d\n",
			rec.DeviceTypes.Mobile, rec.DeviceTypes.Desktop, rec.DeviceTypes.Tablet)
		_ = w.Flush()

		fmt.Println("\nConversions")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "  Submissions\t%d\n", rec.TotalSubmissions)
		_, _ = fmt.Fprintf(w, "  This month\t%d\n", rec.SubmissionsThisMonth)
		_, _ = fmt.Fprintf(w, "  This week\t%d\n", rec.SubmissionsThisWeek)
		_, _ = fmt.Fprintf(w, "  Conversion rate\t%.2f%%\n", rec.ConversionRate)
		last := "None"
		if rec.LastSubmissionDate != nil {
			last = rec.LastSubmissionDate.Local().Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "  Last submission\t%s\n", last)
		_ = w.Flush()

		if len(summary.Browsers) > 0 {
			fmt.Println("\nBrowsers")
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, t := range summary.Browsers {
				_, _ = fmt.Fprintf(w, "  %s\t%d\n", t.Name, t.Count)
			}
			_ = w.Flush()
		}
		if len(summary.Countries) > 0 {
			fmt.Println("\nCountries")
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, t := range summary.Countries {
				_, _ = fmt.Fprintf(w, "  %s\t%s\t%d\n", t.Name, geoip.CountryName(t.Name), t.Count)
			}
			_ = w.Flush()
		}
		fmt.Println()
		return nil
	})
}

func runAnalyticsExport(output string) error {
	return withServices(func(ctx context.Context, svc *services) error {
		rec := svc.analytics.Snapshot(ctx)
		if output == "-" {
			return analytics.ExportCSV(os.Stdout, rec)
		}
		if output == "" {
			output = analytics.ExportFilename(nowFunc())
		}
		if err := writeFile(output, func(f *os.File) error { return analytics.ExportCSV(f, rec) }); err != nil {
			return err
		}
		fmt.Printf("Exported analytics to %s\n", output)
		return nil
	})
}

func runAnalyticsReset(yes bool) error {
	if !yes {
		if !stdinIsTerminal() {
			return fmt.Errorf("refusing to reset analytics without confirmation; pass --yes")
		}
		if !confirm("Reset all analytics data? Leads are kept. [y/N]: ") {
			fmt.Println("Reset cancelled")
			return nil
		}
	}

	return withServices(func(ctx context.Context, svc *services) error {
		if err := svc.analytics.Reset(ctx, true); err != nil {
			return err
		}
		fmt.Println("Analytics reset")
		return nil
	})
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(confirmInput).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
