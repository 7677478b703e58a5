// Command seedrates converts a GST rate workbook into a SQL seed for the
// hsn_codes table. The sheet must hold one code per row with the columns
// code, description, GST rate and, optionally, cess rate; the first row is a
// header. Rates may be written as "18", "18%", "Exempt" or "5% or 18%".
//
// Usage: go run ./cmd/seedrates -in rates.xlsx [-sheet Rates] [-out db/seeds/hsn_codes.sql]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"erpdesk/internal/config"
	"erpdesk/internal/logger"
)

const batchSize = 500

type rateEntry struct {
	code        string
	description string
	gstRate     decimal.Decimal
	cessRate    decimal.Decimal
}

func main() {
	in := flag.String("in", "", "path of the rate workbook (.xlsx)")
	sheet := flag.String("sheet", "", "sheet name; defaults to the first sheet")
	outPath := flag.String("out", "db/seeds/hsn_codes.sql", "path of the generated SQL file")
	effective := flag.String("effective-from", "2017-07-01", "effective_from date written for every rate")
	flag.Parse()

	config.LoadDotEnv()
	log := logger.New(config.LogConfig{Level: "info", Format: "console"})

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := excelize.OpenFile(*in)
	if err != nil {
		log.Fatal().Err(err).Str("path", *in).Msg("open workbook")
	}
	defer func() { _ = f.Close() }()

	name := *sheet
	if name == "" {
		name = f.GetSheetName(0)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		log.Fatal().Err(err).Str("sheet", name).Msg("read sheet")
	}

	entries, skipped := parseRows(rows)
	log.Info().Int("entries", len(entries)).Int("skipped", skipped).Str("sheet", name).Msg("parsed workbook")

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("create output file")
	}
	defer func() { _ = out.Close() }()

	bw := bufio.NewWriter(out)
	if err := writeSQL(bw, entries, *effective); err != nil {
		log.Fatal().Err(err).Msg("write seed")
	}
	if err := bw.Flush(); err != nil {
		log.Fatal().Err(err).Msg("flush seed")
	}

	log.Info().Str("path", *outPath).Int("batches", (len(entries)+batchSize-1)/batchSize).Msg("seed written")
}

// parseRows turns sheet rows into rate entries. Rows without a numeric code
// or a readable rate are skipped and counted. A code listed with several
// rates yields one entry per rate.
func parseRows(rows [][]string) (entries []rateEntry, skipped int) {
	seen := make(map[string]bool)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		code := strings.TrimSpace(cellVal(row, 0))
		if !isNumeric(code) {
			skipped++
			continue
		}
		rates := parseRate(cellVal(row, 2))
		if len(rates) == 0 {
			skipped++
			continue
		}
		cess := decimal.Zero
		if c := parseRate(cellVal(row, 3)); len(c) > 0 {
			cess = c[0]
		}
		for _, r := range rates {
			key := code + "|" + r.StringFixed(2)
			if seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, rateEntry{
				code:        code,
				description: strings.TrimSpace(cellVal(row, 1)),
				gstRate:     r,
				cessRate:    cess,
			})
		}
	}
	return entries, skipped
}

// parseRate extracts every percentage in a free-text rate cell.
//
//	"18%"                                   → [18]
//	"Exempt"                                → [0]
//	"12%-18%"                               → [12, 18]
//	"1% (without ITC) or 5% (without ITC)"  → [1, 5]
func parseRate(s string) []decimal.Decimal {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return nil
	case "exempt", "nil", "nil rated":
		return []decimal.Decimal{decimal.Zero}
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return []decimal.Decimal{d}
	}

	var rates []decimal.Decimal
	seen := make(map[string]bool)
	for _, m := range ratePattern.FindAllStringSubmatch(s, -1) {
		d, err := decimal.NewFromString(m[1])
		if err != nil || seen[d.String()] {
			continue
		}
		seen[d.String()] = true
		rates = append(rates, d)
	}
	return rates
}

func writeSQL(w io.Writer, entries []rateEntry, effectiveFrom string) error {
	if _, err := fmt.Fprintf(w, "-- GST rate seed generated by cmd/seedrates.\n-- %d entries in batches of %d.\nBEGIN;\n\n", len(entries), batchSize); err != nil {
		return err
	}
	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(w, entries[i:end], effectiveFrom); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}
	_, err := fmt.Fprint(w, "\nCOMMIT;\n")
	return err
}

func writeBatch(w io.Writer, batch []rateEntry, effectiveFrom string) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO hsn_codes (code, description, gst_rate, cess_rate, effective_from) VALUES\n")
	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s', %s, %s, '%s')",
			escapeSQL(e.code), escapeSQL(e.description), e.gstRate.StringFixed(2), e.cessRate.StringFixed(2), escapeSQL(effectiveFrom))
	}
	b.WriteString("\nON CONFLICT (code, gst_rate, effective_from) DO NOTHING;\n")

	_, err := io.WriteString(w, b.String())
	return err
}
