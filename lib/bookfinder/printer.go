package bookfinder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"minitools/lib/apperr"
)

const NotFoundNotice = "No book information found."

// Printer renders lookup outcome for humans.
type Printer struct {
	c   *Client
	out io.Writer

	header lipgloss.Style
	field  lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
	errs   lipgloss.Style
	warn   lipgloss.Style
	prompt lipgloss.Style
}

func NewPrinter(c *Client, out io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(out)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	pad := r.NewStyle().Padding(0, 1)
	return &Printer{
		c:      c,
		out:    out,
		header: pad.Foreground(lipgloss.Color("6")).Bold(true),
		field:  pad.Foreground(lipgloss.Color("2")),
		cell:   pad,
		border: r.NewStyle(),
		errs:   r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		prompt: r.NewStyle().Foreground(lipgloss.Color("4")),
	}
}

// Table renders record as two column grid.
func (p *Printer) Table(rec Record) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border).
		BorderRow(true).
		Headers("Field", "Value").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.header
			case col == 0:
				return p.field
			default:
				return p.cell
			}
		})
	for _, kv := range rec.Rows() {
		t.Row(kv[0], kv[1])
	}
	return t.String()
}

// Lookup searches and prints first hit.
// Missing hits are reported as notice and are not error.
func (p *Printer) Lookup(ctx context.Context, query string) error {
	res, err := p.c.Search(ctx, query)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			fmt.Fprintln(p.out, p.errs.Render(
				fmt.Sprintf("Error: Unable to fetch data. Status code: %d", se.Code)))
		} else {
			fmt.Fprintln(p.out, p.errs.Render("Error: "+err.Error()))
		}
		return err
	}

	rec, err := res.First()
	if err != nil {
		if errors.Is(err, apperr.EmptyResult) {
			fmt.Fprintln(p.out, p.warn.Render(NotFoundNotice))
			return nil
		}
		return err
	}

	fmt.Fprintln(p.out, p.Table(rec))
	return nil
}

// Prompt asks for book name on out and reads single line from in.
func (p *Printer) Prompt(in io.Reader) (string, error) {
	fmt.Fprint(p.out, p.prompt.Render("Enter a book name: "))
	l, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || l == "") {
		return "", err
	}
	return strings.TrimRight(l, "\r\n"), nil
}
