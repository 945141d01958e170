package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/treeverse/metastore/pkg/metastore"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"

	MetastoreInteractive        = "METASTORE_INTERACTIVE"
	MetastoreInteractiveDisable = "no"

	ExitCodeError           = 1
	ExitCodeNotFound        = 2
	ExitCodeConflict        = 3
	ExitCodeInvalidArgument = 4

	timeFormat = time.RFC3339
)

var (
	isTerminal       = true
	noColorRequested = false
	outputFormat     = outputTable

	ErrUnknownOutputFormat = errors.New("unknown output format")
)

//nolint:gochecknoinits
func init() {
	// disable colors if we're not attached to interactive TTY
	if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv(MetastoreInteractive) == MetastoreInteractiveDisable {
		DisableColors()
	}
}

func DisableColors() {
	text.DisableColors()
	isTerminal = false
}

// exitCode maps an error on to the process exit code
func exitCode(err error) int {
	switch {
	case errors.Is(err, metastore.ErrNotFound):
		return ExitCodeNotFound
	case errors.Is(err, metastore.ErrConflict):
		return ExitCodeConflict
	case errors.Is(err, metastore.ErrInvalidArgument):
		return ExitCodeInvalidArgument
	default:
		return ExitCodeError
	}
}

func DieErr(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Error executing command: %s\n", text.FgHiRed.Sprint(err.Error()))
	os.Exit(exitCode(err))
}

// writeValue renders v in the selected structured format. Returns false for table output.
func writeValue(w io.Writer, v interface{}) (bool, error) {
	switch outputFormat {
	case outputTable:
		return false, nil
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return true, enc.Encode(v)
	default:
		return true, fmt.Errorf("%w: %s", ErrUnknownOutputFormat, outputFormat)
	}
}

// writeTable renders rows as a table on terminals and as tab separated lines otherwise
func writeTable(w io.Writer, headers table.Row, rows []table.Row) {
	if !isTerminal {
		for _, row := range rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = fmt.Sprint(cell)
			}
			_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(headers)
	t.AppendRows(rows)
	t.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeFormat)
}

var revisionHeaders = table.Row{"Revision", "Created", "Author", "Description"}

func revisionRow(rev *metastore.PackageRevisionInfo) table.Row {
	return table.Row{rev.Revision, formatTime(rev.Created), rev.Author.String(), firstLine(rev.Description)}
}

var tagHeaders = table.Row{"Tag", "Revision", "Created", "Author", "Description"}

func tagRow(tag *metastore.TagInfo) table.Row {
	return table.Row{tag.Name, tag.RevisionRef, formatTime(tag.Created), tag.Author.String(), firstLine(tag.Description)}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func writeRevisions(w io.Writer, revisions []*metastore.PackageRevisionInfo) error {
	if done, err := writeValue(w, revisions); done {
		return err
	}
	rows := make([]table.Row, 0, len(revisions))
	for _, rev := range revisions {
		rows = append(rows, revisionRow(rev))
	}
	writeTable(w, revisionHeaders, rows)
	return nil
}

func writeRevision(w io.Writer, rev *metastore.PackageRevisionInfo) error {
	if done, err := writeValue(w, rev); done {
		return err
	}
	writeTable(w, revisionHeaders, []table.Row{revisionRow(rev)})
	return nil
}

func writeTags(w io.Writer, tags []*metastore.TagInfo) error {
	if done, err := writeValue(w, tags); done {
		return err
	}
	rows := make([]table.Row, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, tagRow(tag))
	}
	writeTable(w, tagHeaders, rows)
	return nil
}

func writeTag(w io.Writer, tag *metastore.TagInfo) error {
	if done, err := writeValue(w, tag); done {
		return err
	}
	writeTable(w, tagHeaders, []table.Row{tagRow(tag)})
	return nil
}

// writePackage renders a fetched revision: its metadata row followed by the package document
func writePackage(w io.Writer, rev *metastore.PackageRevisionInfo) error {
	if done, err := writeValue(w, rev); done {
		return err
	}
	writeTable(w, revisionHeaders, []table.Row{revisionRow(rev)})
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rev.Package)
}
