// Package printer renders result objects for terminals and files. It is
// an external collaborator of the engine: the core never formats output.
package printer

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/gitql-go/gitql/ast"
	"github.com/gitql-go/gitql/object"
)

// OutputPrinter renders one result object.
type OutputPrinter interface {
	Print(obj *object.GitQLObject) error
}

// TablePrinter renders an aligned table, optionally paginated by page
// size with interactive next/previous/quit prompts.
type TablePrinter struct {
	Out        io.Writer
	In         io.Reader
	Pagination bool
	PageSize   int
}

// Print implements OutputPrinter.
func (p *TablePrinter) Print(obj *object.GitQLObject) error {
	if obj.IsEmpty() || obj.Len() == 0 {
		return nil
	}

	rows := obj.Flat()
	if !p.Pagination || p.PageSize <= 0 || p.PageSize >= len(rows) {
		p.printPage(obj.Titles, rows)
		return nil
	}

	pages := (len(rows) + p.PageSize - 1) / p.PageSize
	current := 1
	scanner := bufio.NewScanner(p.In)
	for {
		start := (current - 1) * p.PageSize
		end := start + p.PageSize
		if end > len(rows) {
			end = len(rows)
		}
		fmt.Fprintf(p.Out, "Page %d/%d\n", current, pages)
		p.printPage(obj.Titles, rows[start:end])

		switch p.promptPagination(scanner, current, pages) {
		case "n":
			current++
		case "p":
			current--
		default:
			return nil
		}
	}
}

func (p *TablePrinter) printPage(titles []string, rows []object.Row) {
	table := tablewriter.NewWriter(p.Out)
	table.SetHeader(titles)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = v.Literal()
		}
		table.Append(cells)
	}
	table.Render()
}

func (p *TablePrinter) promptPagination(scanner *bufio.Scanner, current, pages int) string {
	for {
		switch {
		case current < 2:
			fmt.Fprintln(p.Out, "Enter 'n' for next page, or 'q' to quit:")
		case current == pages:
			fmt.Fprintln(p.Out, "Enter 'p' for previous page, or 'q' to quit:")
		default:
			fmt.Fprintln(p.Out, "Enter 'n' for next page, 'p' for previous page, or 'q' to quit:")
		}
		if !scanner.Scan() {
			return "q"
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "n":
			if current < pages {
				return "n"
			}
			fmt.Fprintln(p.Out, "Already on the last page")
		case "p":
			if current > 1 {
				return "p"
			}
			fmt.Fprintln(p.Out, "Already on the first page")
		case "q":
			return "q"
		default:
			fmt.Fprintln(p.Out, "Invalid input")
		}
	}
}

// JSONPrinter renders the rows as a JSON array of title-keyed objects.
type JSONPrinter struct {
	Out io.Writer
}

// Print implements OutputPrinter.
func (p *JSONPrinter) Print(obj *object.GitQLObject) error {
	records := make([]map[string]string, 0, obj.Len())
	for _, row := range obj.Flat() {
		record := make(map[string]string, len(obj.Titles))
		for i, title := range obj.Titles {
			if i < len(row.Values) {
				record[title] = row.Values[i].Literal()
			}
		}
		records = append(records, record)
	}
	encoder := json.NewEncoder(p.Out)
	return errors.Wrap(encoder.Encode(records), "encode result as json")
}

// CSVPrinter renders the titles and rows as comma separated values.
type CSVPrinter struct {
	Out io.Writer
}

// Print implements OutputPrinter.
func (p *CSVPrinter) Print(obj *object.GitQLObject) error {
	w := csv.NewWriter(p.Out)
	if err := w.Write(obj.Titles); err != nil {
		return errors.Wrap(err, "write csv titles")
	}
	for _, row := range obj.Flat() {
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = v.Literal()
		}
		if err := w.Write(cells); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush csv output")
}

// WriteOutfile writes the result to the file named by an INTO clause:
// delimited lines for OUTFILE, raw concatenation for DUMPFILE.
func WriteOutfile(into *ast.IntoStatement, obj *object.GitQLObject) error {
	file, err := os.Create(into.Path)
	if err != nil {
		return errors.Wrapf(err, "create outfile %q", into.Path)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, row := range obj.Flat() {
		for i, v := range row.Values {
			if into.IsDump {
				w.WriteString(v.Literal())
				continue
			}
			if i > 0 {
				w.WriteString(into.FieldsTerminatedBy)
			}
			if into.EnclosedBy != "" {
				w.WriteString(into.EnclosedBy)
			}
			w.WriteString(v.Literal())
			if into.EnclosedBy != "" {
				w.WriteString(into.EnclosedBy)
			}
		}
		if !into.IsDump {
			w.WriteString(into.LinesTerminatedBy)
		}
	}
	return errors.Wrapf(w.Flush(), "write outfile %q", into.Path)
}
