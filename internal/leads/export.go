package leads

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dreamdigital/landing/internal/models"
)

// CSVHeader is the fixed column order of the lead export
var CSVHeader = []string{"ID", "Name/Company", "Phone", "Email", "Pricing", "Date", "Status"}

// ExportCSV writes all leads with a header row as plain comma-joined lines.
// Fields are written as stored: a comma inside a value is not quoted and
// shifts the columns of that row.
func ExportCSV(w io.Writer, all []models.Lead) error {
	bw := bufio.NewWriter(w)
	writeRow(bw, CSVHeader)
	for _, lead := range all {
		writeRow(bw, []string{
			lead.ID,
			lead.Name,
			lead.Phone,
			lead.EmailOrDefault(),
			lead.PricingOrDefault(),
			lead.SubmittedAt.UTC().Format(time.RFC3339),
			string(lead.Status),
		})
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write lead csv: %w", err)
	}
	return nil
}

func writeRow(w *bufio.Writer, fields []string) {
	_, _ = w.WriteString(strings.Join(fields, ","))
	_ = w.WriteByte('\n')
}

// ExportFilename is the download name for an export made at now
func ExportFilename(now time.Time) string {
	return "dream_digital_leads_" + now.UTC().Format("2006-01-02") + ".csv"
}
