package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"

	"github.com/fkhayef/receiptsplit/internal/settlement"
)

const defaultWidth = 100

// Markdown renders result as a markdown document
func Markdown(result *settlement.Result) string {
	var buf bytes.Buffer
	// Blocks are separated by empty lines so tables never run into paragraphs
	doc := md.NewMarkdown(&buf)

	title := "Receipt split"
	if result.Description != "" {
		title = result.Description
	}
	doc.H1(escape(title))
	doc.PlainText("")

	for _, rcpt := range result.Receipts {
		doc.H2(escape(rcpt.Name))
		doc.PlainText("")
		doc.PlainText(fmt.Sprintf("Paid by %s: subtotal %s, total %s, tax + tip rate %s.",
			md.Bold(escape(rcpt.Payer.Name)), amount(rcpt.Subtotal), amount(rcpt.Total), rate(rcpt.Multiplier())))
		doc.PlainText("")

		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft},
			Header:    []string{"Participant", "Owed", "Items"},
		}
		for i, a := range rcpt.Scaled {
			items := make([]string, len(a.Items))
			for k, item := range a.Items {
				items[k] = fmt.Sprintf("%s (%s)", escape(item.Name), amount(item.Price))
			}
			table.Rows = append(table.Rows, []string{
				escape(result.Roster.Name(i)),
				amount(a.Sum()),
				strings.Join(items, ", "),
			})
		}
		doc.Table(table)
		doc.PlainText("")
		doc.PlainText(fmt.Sprintf("Check total: %s", amount(rcpt.CheckTotal())))
		doc.PlainText("")
	}

	doc.H2("Final Balances")
	doc.PlainText("")
	balances := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft},
		Header:    []string{"Participant", "Balance", "Action"},
	}
	for _, bal := range result.Balances {
		verb, v := "should pay", bal.Amount
		if bal.Amount < 0 {
			verb, v = "should receive", -bal.Amount
		}
		balances.Rows = append(balances.Rows, []string{escape(bal.Participant.Name), amount(v), verb})
	}
	doc.Table(balances)
	doc.PlainText("")

	doc.H2("Final Transactions")
	doc.PlainText("")
	if len(result.Transactions) == 0 {
		doc.PlainText("Everyone is settled up.")
	} else {
		transactions := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight},
			Header:    []string{"From", "To", "Amount"},
		}
		for _, tx := range result.Transactions {
			transactions.Rows = append(transactions.Rows, []string{
				escape(tx.Payer.Name),
				escape(tx.Receiver.Name),
				amount(tx.Amount),
			})
		}
		doc.Table(transactions)
	}

	doc.PlainText("")
	doc.PlainText(Disclaimer)
	return doc.String()
}

// WriteMarkdown renders the markdown report for the terminal with glamour
func WriteMarkdown(w io.Writer, result *settlement.Result, opts Options) error {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	styleOpt := glamour.WithAutoStyle()
	if opts.Style != "" && opts.Style != "auto" {
		styleOpt = glamour.WithStandardStyle(opts.Style)
	}

	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(Markdown(result))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
