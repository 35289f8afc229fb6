package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/receipt"
	"github.com/fkhayef/receiptsplit/internal/settlement"
)

// WriteText writes every receipt, the final balances and the final
// transactions as plain console text
func WriteText(w io.Writer, result *settlement.Result) error {
	bw := bufio.NewWriter(w)
	for _, rcpt := range result.Receipts {
		writeReceipt(bw, result.Roster, rcpt)
	}
	writeBalances(bw, result.Balances)
	writeTransactions(bw, result.Transactions)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, Disclaimer)
	return bw.Flush()
}

func writeReceipt(w io.Writer, roster group.Roster, rcpt *receipt.Receipt) {
	header := fmt.Sprintf("--- RECEIPT: %s ---", rcpt.Name)
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "Payer:\t\t %s\n", rcpt.Payer.Name)
	fmt.Fprintf(w, "Subtotal:\t %s\n", amount(rcpt.Subtotal))
	fmt.Fprintf(w, "Total:\t\t %s\n", amount(rcpt.Total))
	fmt.Fprintf(w, "Tax + Tip rate:\t %s\n", rate(rcpt.Multiplier()))
	fmt.Fprintln(w)

	// One extra column for the colon
	width := roster.LongestName() + 1
	for i, a := range rcpt.Scaled {
		fmt.Fprintf(w, "%-*s %s \t [%s]\n", width, roster.Name(i)+":", amount(a.Sum()), strings.Join(a.Names(), ", "))
		fmt.Fprintf(w, "%-*s %s \t %s\n", width, "", strings.Repeat(" ", 5), amounts(a.Prices()))
	}

	fmt.Fprintf(w, "Check total: %s\n", amount(rcpt.CheckTotal()))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Note: price list includes tax + tip multiplier")
	fmt.Fprintln(w, strings.Repeat("-", len(header)))
}

func writeBalances(w io.Writer, balances []settlement.Balance) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Final Balances ---")
	for _, b := range balances {
		if b.Amount < 0 {
			fmt.Fprintf(w, "%s should receive %s\n", b.Participant.Name, amount(-b.Amount))
		} else {
			fmt.Fprintf(w, "%s should pay %s\n", b.Participant.Name, amount(b.Amount))
		}
	}
}

func writeTransactions(w io.Writer, transactions []settlement.Transaction) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Final Transactions ---")
	if len(transactions) == 0 {
		fmt.Fprintln(w, "Everyone is settled up")
		return
	}
	for _, tx := range transactions {
		fmt.Fprintf(w, "%s -> %s: %s\n", tx.Payer.Name, tx.Receiver.Name, amount(tx.Amount))
	}
}
