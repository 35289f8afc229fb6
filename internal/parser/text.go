package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fkhayef/receiptsplit/internal/apperr"
	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/receipt"
)

// Line prefixes and separators of the text format
const (
	PrefixNames       = "NAMES:"
	PrefixDescription = "DESCRIPTION:"
	PrefixReceiptName = "RECEIPT NAME:"
	PrefixPayer       = "PAYER:"
	PrefixPrice       = "PRICE:"

	ReceiptSeparator = "--"
	UnspecifiedItem  = "Unspecified Item"

	maxLineBytes = 1 << 20

	itemShape = "'price', 'item, price', 'item, price; i1,i2,...' or 'item, price; i1,i2,...; r1,r2,...'"
)

// Common errors
var (
	ErrEmptyInput      = errors.New("input is empty")
	ErrMissingPrefix   = errors.New("line does not start with the expected prefix")
	ErrIncompleteBlock = errors.New("receipt block needs RECEIPT NAME, PAYER and PRICE lines")
	ErrPriceLine       = errors.New("price line must hold 'subtotal, total'")
	ErrItemShape       = errors.New("misformatted item line")
	ErrNumber          = errors.New("invalid number")
	ErrUndecodable     = errors.New("document cannot be decoded")
)

type line struct {
	num  int
	text string
}

func (l line) record() string {
	return fmt.Sprintf("line %d: %q", l.num, l.text)
}

// ParseText decodes the plain-text receipt format:
//
//	NAMES: Alice, Bob, Carol
//	DESCRIPTION: Weekend trip
//	RECEIPT NAME: Dinner
//	PAYER: Alice
//	PRICE: 100, 110
//	dinner, 60
//	wine, 30; 1,3
//	dessert, 10; 1,2; 1,3
//	--
//	RECEIPT NAME: ...
//
// Participant indices are 1-based. Blank lines are ignored.
func ParseText(r io.Reader) (*Document, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperr.Format("parser.text", "", ErrEmptyInput)
	}
	if len(lines) < 2 {
		return nil, apperr.Format("parser.text", lines[0].record(),
			fmt.Errorf("%w: expected %q on the next line", ErrMissingPrefix, PrefixDescription))
	}

	namesLine, err := cleanLine(PrefixNames, lines[0])
	if err != nil {
		return nil, err
	}
	roster, err := group.NewRoster(splitTrim(namesLine, ","))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lines[0].record(), err)
	}

	description, err := cleanLine(PrefixDescription, lines[1])
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Roster:      roster,
		Description: description,
	}
	for _, block := range splitBlocks(lines[2:]) {
		desc, err := parseReceipt(roster, block)
		if err != nil {
			return nil, err
		}
		doc.Receipts = append(doc.Receipts, desc)
	}

	return doc, nil
}

func readLines(r io.Reader) ([]line, error) {
	var lines []line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, line{num: num, text: text})
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, apperr.Format("parser.text", fmt.Sprintf("line %d", num+1),
				fmt.Errorf("%w: lines are limited to %d bytes", err, maxLineBytes))
		}
		return nil, fmt.Errorf("failed to read receipt file: %w", err)
	}
	return lines, nil
}

// splitBlocks partitions lines on the receipt separator, dropping empty blocks
func splitBlocks(lines []line) [][]line {
	var blocks [][]line
	var current []line
	for _, l := range lines {
		if l.text == ReceiptSeparator {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, l)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseReceipt(roster group.Roster, block []line) (receipt.Descriptor, error) {
	if len(block) < 3 {
		return receipt.Descriptor{}, apperr.Format("parser.receipt", block[0].record(), ErrIncompleteBlock)
	}

	name, err := cleanLine(PrefixReceiptName, block[0])
	if err != nil {
		return receipt.Descriptor{}, err
	}

	payerName, err := cleanLine(PrefixPayer, block[1])
	if err != nil {
		return receipt.Descriptor{}, err
	}
	payer, err := roster.Index(payerName)
	if err != nil {
		return receipt.Descriptor{}, fmt.Errorf("%s: %w", block[1].record(), err)
	}

	subtotal, total, err := parsePrices(block[2])
	if err != nil {
		return receipt.Descriptor{}, err
	}

	desc := receipt.Descriptor{
		Name:     name,
		Payer:    payer,
		Subtotal: subtotal,
		Total:    total,
		Items:    make([]receipt.ItemDescriptor, 0, len(block)-3),
	}
	for _, l := range block[3:] {
		item, err := parseItem(roster, l)
		if err != nil {
			return receipt.Descriptor{}, err
		}
		desc.Items = append(desc.Items, item)
	}

	return desc, nil
}

func parsePrices(l line) (float64, float64, error) {
	rest, err := cleanLine(PrefixPrice, l)
	if err != nil {
		return 0, 0, err
	}
	fields := splitTrim(rest, ",")
	if len(fields) != 2 {
		return 0, 0, apperr.Format("parser.price", l.record(), ErrPriceLine)
	}
	subtotal, err := parseFloat(fields[0], l)
	if err != nil {
		return 0, 0, err
	}
	total, err := parseFloat(fields[1], l)
	if err != nil {
		return 0, 0, err
	}
	return subtotal, total, nil
}

func parseItem(roster group.Roster, l line) (receipt.ItemDescriptor, error) {
	fields := splitTrim(l.text, ";")
	if len(fields) > 3 {
		return receipt.ItemDescriptor{}, apperr.Formatf("parser.item", l.record(), "%w: expected %s", ErrItemShape, itemShape)
	}

	itemPrice := fields[0]
	if len(fields) == 1 && !strings.Contains(itemPrice, ",") {
		itemPrice = UnspecifiedItem + ", " + itemPrice
	}
	name, price, err := parseItemPrice(itemPrice, l)
	if err != nil {
		return receipt.ItemDescriptor{}, err
	}

	item := receipt.ItemDescriptor{
		Name:   name,
		Price:  price,
		Record: l.record(),
	}

	if len(fields) >= 2 {
		for _, s := range splitTrim(fields[1], ",") {
			n, err := strconv.Atoi(s)
			if err != nil {
				return receipt.ItemDescriptor{}, apperr.Formatf("parser.item", l.record(),
					"%w: participant %q is not an index: expected %s", ErrNumber, s, itemShape)
			}
			idx, err := roster.FromOneBased(n)
			if err != nil {
				return receipt.ItemDescriptor{}, fmt.Errorf("%s: %w", l.record(), err)
			}
			item.Participants = append(item.Participants, idx)
		}
	}

	if len(fields) == 3 {
		item.Ratios = []float64{}
		for _, s := range splitTrim(fields[2], ",") {
			r, err := parseFloat(s, l)
			if err != nil {
				return receipt.ItemDescriptor{}, err
			}
			item.Ratios = append(item.Ratios, r)
		}
		if len(item.Ratios) != len(item.Participants) {
			return receipt.ItemDescriptor{}, apperr.Format("parser.item", l.record(),
				fmt.Errorf("%w: %d participants, %d ratios", receipt.ErrRatioCountMismatch, len(item.Participants), len(item.Ratios)))
		}
	}

	return item, nil
}

// parseItemPrice splits "item, price"
func parseItemPrice(s string, l line) (string, float64, error) {
	fields := splitTrim(s, ",")
	if len(fields) != 2 {
		return "", 0, apperr.Formatf("parser.item", l.record(), "%w: expected exactly an item and a price in %q", ErrItemShape, s)
	}
	price, err := parseFloat(fields[1], l)
	if err != nil {
		return "", 0, err
	}
	return fields[0], price, nil
}

func parseFloat(s string, l line) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperr.Formatf("parser.number", l.record(), "%w: %q", ErrNumber, s)
	}
	return v, nil
}

// cleanLine strips prefix from l, failing when l does not start with it
func cleanLine(prefix string, l line) (string, error) {
	if !strings.HasPrefix(l.text, prefix) {
		return "", apperr.Format("parser.line", l.record(), fmt.Errorf("%w %q", ErrMissingPrefix, prefix))
	}
	return strings.TrimSpace(strings.TrimPrefix(l.text, prefix)), nil
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
