package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

const (
	// NoRecordsMessage is printed instead of an empty table.
	NoRecordsMessage = "No records to tabulate"

	maskEdge       = 8
	maxCellWidth   = 30
	dateTimeLayout = "2006-01-02 15:04:05"
)

// DefaultHeaders are the columns shown by list and friends.
var DefaultHeaders = []string{
	"id", "name", "expiration_date", "active", "batch", "source", "login", "key", "expired", "usable",
}

// AllHeaders shows every stored and derived field.
var AllHeaders = []string{
	"id", "name", "expiration_in_sse", "active", "batch", "source", "login",
	"encrypted_key", "key", "expiration_date", "expired", "usable",
}

var countsHeaders = []string{"name", "source", "login", "batch", "usable", "unusable"}

var (
	okFmt   = color.New(color.FgGreen).SprintFunc()
	warnFmt = color.New(color.FgYellow).SprintFunc()
	errFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
	headFmt = lipgloss.NewStyle().Bold(true)
)

// MaskKey shows the first and last eight characters of a secret. Values too
// short to keep anything hidden are masked entirely.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	r := []rune(key)
	if len(r) <= 2*maskEdge {
		return strings.Repeat("*", maskEdge)
	}
	return string(r[:maskEdge]) + "..." + string(r[len(r)-maskEdge:])
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth])
}

// Tabulate renders records as a table with the given headers. Any column
// whose name contains "key" is masked unless reveal is set; other values are
// cut to 30 characters.
func Tabulate(records []model.KeyRecord, headers []string, reveal bool) string {
	if len(records) == 0 {
		return NoRecordsMessage
	}
	if len(headers) == 0 {
		headers = DefaultHeaders
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(headers))
		for i, header := range headers {
			value := recordField(rec, header)
			switch {
			case strings.Contains(header, "key") && !reveal:
				row[i] = MaskKey(value)
			case strings.Contains(header, "key"):
				row[i] = value
			default:
				row[i] = truncate(value)
			}
		}
		rows = append(rows, row)
	}

	return renderTable(headers, rows)
}

// TabulateCounts renders the counts report under its summary line.
func TabulateCounts(report model.UsabilityCountsReport) string {
	if len(report.Counts) == 0 {
		return report.Summary() + "\n" + NoRecordsMessage
	}

	rows := make([][]string, 0, len(report.Counts))
	for _, c := range report.Counts {
		rows = append(rows, []string{
			truncate(c.Name), truncate(c.Source), truncate(c.Login), truncate(c.Batch),
			strconv.Itoa(c.Usable), strconv.Itoa(c.Unusable),
		})
	}
	return report.Summary() + "\n" + renderTable(countsHeaders, rows)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headFmt.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}

func recordField(rec model.KeyRecord, header string) string {
	switch header {
	case "id":
		return strconv.FormatInt(rec.ID, 10)
	case "name":
		return rec.Name
	case "expiration_in_sse":
		if rec.ExpirationEpochSeconds == nil {
			return model.NoneLabel
		}
		return strconv.FormatInt(*rec.ExpirationEpochSeconds, 10)
	case "active":
		return strconv.FormatBool(rec.Active)
	case "batch":
		return optional(rec.Batch)
	case "source":
		return optional(rec.Source)
	case "login":
		return optional(rec.Login)
	case "encrypted_key":
		return rec.EncryptedKey
	case "key":
		return rec.Key
	case "expiration_date":
		if rec.ExpirationDate == nil {
			return model.NoneLabel
		}
		return rec.ExpirationDate.Local().Format(dateTimeLayout)
	case "expired":
		return strconv.FormatBool(rec.Expired)
	case "usable":
		return strconv.FormatBool(rec.Usable)
	default:
		return ""
	}
}

func optional(v *string) string {
	if v == nil {
		return model.NoneLabel
	}
	return *v
}

// recordView is the JSON shape of a record. Key is omitted unless revealed.
type recordView struct {
	ID                     int64      `json:"id"`
	Name                   string     `json:"name"`
	ExpirationEpochSeconds *int64     `json:"expiration_in_sse"`
	Active                 bool       `json:"active"`
	Batch                  *string    `json:"batch"`
	Source                 *string    `json:"source"`
	Login                  *string    `json:"login"`
	Key                    string     `json:"key,omitempty"`
	ExpirationDate         *time.Time `json:"expiration_date"`
	Expired                bool       `json:"expired"`
	Usable                 bool       `json:"usable"`
}

func newRecordView(rec model.KeyRecord, reveal bool) recordView {
	view := recordView{
		ID:                     rec.ID,
		Name:                   rec.Name,
		ExpirationEpochSeconds: rec.ExpirationEpochSeconds,
		Active:                 rec.Active,
		Batch:                  rec.Batch,
		Source:                 rec.Source,
		Login:                  rec.Login,
		ExpirationDate:         rec.ExpirationDate,
		Expired:                rec.Expired,
		Usable:                 rec.Usable,
	}
	if reveal {
		view.Key = rec.Key
	}
	return view
}

func newRecordViews(records []model.KeyRecord, reveal bool) []recordView {
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, newRecordView(rec, reveal))
	}
	return views
}

func printOK(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintln(w, okFmt(fmt.Sprintf(format, args...)))
	return err
}

func printWarn(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintln(w, warnFmt(fmt.Sprintf(format, args...)))
	return err
}

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, errFmt("error:"), err)
}
