package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dreamdigital/landing/internal/leads"
	"github.com/dreamdigital/landing/internal/models"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and manage the lead ledger",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads, newest first",
	Long: `List every lead in the ledger.

Examples:
  landing leads list
  landing leads list --status new
  landing leads list --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLeadsList(leadsStatusFilter, leadsFormat)
	},
}

var leadsStatusCmd = &cobra.Command{
	Use:   "status <lead-id> <new|contacted|converted|lost>",
	Short: "Change the status of a lead",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLeadsStatus(args[0], args[1])
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger as CSV",
	Long: `Export the ledger as CSV.

Without --output the file is named dream_digital_leads_<date>.csv in the
current directory. Use --output - to write to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLeadsExport(leadsOutput)
	},
}

var leadsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lead counts per status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLeadsStats(leadsFormat)
	},
}

// Command flags
var (
	leadsStatusFilter string
	leadsFormat       string
	leadsOutput       string
)

// nowFunc is the clock for exports and stats (can be replaced in tests)
var nowFunc = time.Now

func init() {
	leadsListCmd.Flags().StringVar(&leadsStatusFilter, "status", "", "only show leads with this status")
	leadsListCmd.Flags().StringVar(&leadsFormat, "format", "table", "output format: table, json, yaml or csv")
	leadsStatsCmd.Flags().StringVar(&leadsFormat, "format", "table", "output format: table, json or yaml")
	leadsExportCmd.Flags().StringVarP(&leadsOutput, "output", "o", "", "output file, - for stdout")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsStatusCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	leadsCmd.AddCommand(leadsStatsCmd)
}

func withServices(fn func(ctx context.Context, svc *services) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc, err := openServices(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	return fn(ctx, svc)
}

func runLeadsList(statusFilter, format string) error {
	if err := validateFormat(format, "table", "json", "yaml", "csv"); err != nil {
		return err
	}
	var filter models.LeadStatus
	if statusFilter != "" {
		s, err := models.ParseLeadStatus(statusFilter)
		if err != nil {
			return err
		}
		filter = s
	}

	return withServices(func(ctx context.Context, svc *services) error {
		all := svc.ledger.ListAll(ctx)
		list := make([]models.Lead, 0, len(all))
		for i := len(all) - 1; i >= 0; i-- {
			if filter == "" || all[i].Status == filter {
				list = append(list, all[i])
			}
		}

		switch format {
		case "json":
			return printJSON(list)
		case "yaml":
			return printYAML(list)
		case "csv":
			return leads.ExportCSV(os.Stdout, list)
		}

		if len(list) == 0 {
			fmt.Println("No leads found")
			return nil
		}

		fmt.Printf("\nLeads (%d total)\n\n", len(list))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tDATE\tNAME/COMPANY\tPHONE\tEMAIL\tPRICING\tSTATUS")
		_, _ = fmt.Fprintln(w, "--\t----\t------------\t-----\t-----\t-------\t------")
		for _, l := range list {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				l.ID,
				l.SubmittedAt.Local().Format("2006-01-02 15:04"),
				l.Name,
				l.Phone,
				l.EmailOrDefault(),
				l.PricingOrDefault(),
				l.Status.Label(),
			)
		}
		_ = w.Flush()
		fmt.Println()
		return nil
	})
}

func runLeadsStatus(id, rawStatus string) error {
	status, err := models.ParseLeadStatus(rawStatus)
	if err != nil {
		return err
	}

	return withServices(func(ctx context.Context, svc *services) error {
		lead, ok := svc.ledger.Get(ctx, id)
		if !ok {
			fmt.Printf("Lead %s not found, nothing changed\n", id)
			return nil
		}
		changed, err := svc.ledger.SetStatus(ctx, id, status)
		if err != nil {
			return err
		}
		if !changed {
			fmt.Printf("Lead %s (%s) is already %s\n", id, lead.Name, status.Label())
			return nil
		}
		fmt.Printf("Lead %s (%s): %s -> %s\n", id, lead.Name, lead.Status.Label(), status.Label())
		return nil
	})
}

func runLeadsExport(output string) error {
	return withServices(func(ctx context.Context, svc *services) error {
		all := svc.ledger.ListAll(ctx)
		if output == "-" {
			return leads.ExportCSV(os.Stdout, all)
		}
		if output == "" {
			output = leads.ExportFilename(nowFunc())
		}
		if err := writeFile(output, func(f *os.File) error { return leads.ExportCSV(f, all) }); err != nil {
			return err
		}
		fmt.Printf("Exported %d leads to %s\n", len(all), output)
		return nil
	})
}

func runLeadsStats(format string) error {
	if err := validateFormat(format, "table", "json", "yaml"); err != nil {
		return err
	}

	return withServices(func(ctx context.Context, svc *services) error {
		stats := leads.ComputeStats(svc.ledger.ListAll(ctx), nowFunc())
		switch format {
		case "json":
			return printJSON(stats)
		case "yaml":
			return printYAML(stats)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "Total\t%d\n", stats.Total)
		for _, s := range models.LeadStatuses {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", s.Label(), stats.Count(s))
		}
		_, _ = fmt.Fprintf(w, "This month\t%d\n", stats.ThisMonth)
		_, _ = fmt.Fprintf(w, "This week\t%d\n", stats.ThisWeek)
		return w.Flush()
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
