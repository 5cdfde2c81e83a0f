package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin"
	diff "github.com/sourcegraph/go-diff-patch"

	sie "kastelo.dev/sieio"
	"kastelo.dev/sieio/config"
	"kastelo.dev/sieio/excel"
	"kastelo.dev/sieio/exporter"
	"kastelo.dev/sieio/importer"
	"kastelo.dev/sieio/store"
)

var (
	configFile = kingpin.Flag("config", "Configuration file").Short('c').String()
	infile     = kingpin.Flag("input", "Input file (default stdin)").Short('i').String()
	outfile    = kingpin.Flag("output", "Output file (default stdout)").Short('o').String()

	cmdDecode  = kingpin.Command("decode", "Print the input as UTF-8 text")
	cmdAnalyze = kingpin.Command("analyze", "List accounts missing from the ledger")

	cmdImport         = kingpin.Command("import", "Import the input into the ledger")
	importFrom        = cmdImport.Flag("from", "First verification date to import").String()
	importTo          = cmdImport.Flag("to", "Last verification date to import").String()
	importExclude     = cmdImport.Flag("exclude", "Verification to skip, as SERIES-NUMBER").Strings()
	importNoVers      = cmdImport.Flag("balances-only", "Import only opening balances").Bool()
	importOnlyMissing = cmdImport.Flag("only-listed", "Create only the accounts the analysis lists").Bool()

	cmdExport  = kingpin.Command("export", "Export one calendar year from the ledger")
	exportYear = cmdExport.Flag("year", "Calendar year").Default(fmt.Sprint(time.Now().Year())).Int()

	cmdReport        = kingpin.Command("report", "Text reports")
	cmdReportResult  = cmdReport.Command("result", "Show result report")
	cmdReportBalance = cmdReport.Command("balance", "Show balance report")
	cmdReportVAT     = cmdReport.Command("vat", "Show VAT report")

	cmdXLSX        = kingpin.Command("xlsx", "Spreadsheet reports")
	cmdXLSXResult  = cmdXLSX.Command("result", "Write result report")
	cmdXLSXBalance = cmdXLSX.Command("balance", "Write balance report")

	cmdRoundtrip = kingpin.Command("roundtrip", "Parse and re-encode the input, printing the difference")
)

func main() {
	cmd := kingpin.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Loading configuration", "error", err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	ctx := context.Background()
	switch cmd {
	case cmdDecode.FullCommand():
		err = decode()
	case cmdAnalyze.FullCommand():
		err = analyze(ctx, cfg, logger)
	case cmdImport.FullCommand():
		err = importFile(ctx, cfg, logger)
	case cmdExport.FullCommand():
		err = export(ctx, cfg, logger)
	case cmdReportResult.FullCommand():
		err = report(func(w io.Writer, doc *sie.Document) error { return resultReport(w, doc) })
	case cmdReportBalance.FullCommand():
		err = report(func(w io.Writer, doc *sie.Document) error { balanceReport(w, doc); return nil })
	case cmdReportVAT.FullCommand():
		err = report(func(w io.Writer, doc *sie.Document) error { vatReport(w, doc); return nil })
	case cmdXLSXResult.FullCommand():
		err = spreadsheet("result.xlsx", excel.ResultXLSX)
	case cmdXLSXBalance.FullCommand():
		err = spreadsheet("balance.xlsx", excel.BalanceXLSX)
	case cmdRoundtrip.FullCommand():
		err = roundtrip(logger)
	}
	if err != nil {
		logger.Error("Command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

type input struct {
	name string
	data []byte
}

func readInput() (input, error) {
	if *infile == "" {
		bs, err := io.ReadAll(os.Stdin)
		return input{name: "stdin.se", data: bs}, err
	}
	bs, err := os.ReadFile(*infile)
	return input{name: filepath.Base(*infile), data: bs}, err
}

func parseInput() (*sie.Document, error) {
	in, err := readInput()
	if err != nil {
		return nil, err
	}
	doc := sie.ParseString(sie.Decode(in.data).Text)
	for _, w := range doc.Warnings {
		slog.Warn("SIE parse warning", "line", w.Line, "msg", w.Message)
	}
	return doc, nil
}

func writeOutput(bs []byte, fallback string) error {
	name := *outfile
	if name == "" {
		name = fallback
	}
	if name == "" || name == "-" {
		_, err := os.Stdout.Write(bs)
		return err
	}
	return os.WriteFile(name, bs, 0o644)
}

func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.DBDriver, err)
	}
	return st, nil
}

func decode() error {
	in, err := readInput()
	if err != nil {
		return err
	}
	dec := sie.DecodeWith(in.data, sie.DecodeOptions{Logger: slog.Default()})
	slog.Info("Decoded input", "encoding", dec.Encoding, "format", dec.FormatTag)
	return writeOutput([]byte(dec.Text), "")
}

func newImporter(cfg *config.Config, st *store.Store, logger *slog.Logger) *importer.Importer {
	return importer.New(st,
		importer.WithLogger(logger),
		importer.WithThresholds(cfg.Thresholds()),
		importer.WithMaxUploadSize(cfg.MaxUploadSize),
	)
}

func analyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	in, err := readInput()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := newImporter(cfg, st, logger).Inspect(ctx, in.data, importer.FileInfo{Name: in.name})
	if err != nil {
		return err
	}

	a := p.Analysis
	fmt.Printf("Encoding:      %s\n", p.Encoding)
	fmt.Printf("Period:        %s - %s\n", p.DateFrom, p.DateTo)
	fmt.Printf("Verifications: %d (%d unbalanced)\n", len(p.Document.Verifications), len(p.Unbalanced))
	fmt.Printf("Missing:       %d standard, %d company specific, %d critical, %d used\n",
		len(a.StandardMissing), len(a.CustomMissing), len(a.CriticalMissing), len(a.UsedMissing))
	for _, num := range a.ToDisplay {
		name := p.Document.AccountName(num)
		if std, ok := sie.StandardAccountName(num); name == "" && ok {
			name = std
		}
		fmt.Printf("  %6s %s\n", num, name)
	}
	return nil
}

func importFile(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	in, err := readInput()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	im := newImporter(cfg, st, logger)
	fi := importer.FileInfo{Name: in.name, Size: int64(len(in.data))}
	p, err := im.Inspect(ctx, in.data, fi)
	if err != nil {
		return err
	}
	fi.Encoding = p.Encoding

	missing := p.Analysis.AllMissing
	if *importOnlyMissing {
		missing = p.Analysis.ToDisplay
	}
	res, err := im.Import(ctx, p.Document, missing, importer.Settings{
		OwnerID:             cfg.Owner,
		ImportVerifications: !*importNoVers,
		StartDate:           *importFrom,
		EndDate:             *importTo,
		Excluded:            *importExclude,
	}, fi)
	for _, w := range res.Warnings {
		fmt.Println("warning:", w)
	}
	if err != nil {
		return err
	}

	c := res.Counts
	fmt.Printf("Imported %s (log %s)\n", in.name, res.LogID)
	fmt.Printf("  accounts created: %d\n", c.AccountsCreated)
	fmt.Printf("  transactions:     %d\n", c.Transactions)
	fmt.Printf("  postings:         %d\n", c.Postings)
	fmt.Printf("  balances:         %d IB, %d UB, %d RES\n", c.OpeningBalances, c.ClosingBalances, c.IncomeStatement)
	if c.Skipped > 0 {
		fmt.Printf("  skipped:          %d\n", c.Skipped)
	}
	return nil
}

func export(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ex := exporter.New(st, exporter.Options{
		ProgramName:    cfg.ProgramName,
		ProgramVersion: cfg.ProgramVersion,
		OrgNo:          cfg.OrgNo,
		CompanyName:    cfg.CompanyName,
		AccountPlan:    cfg.AccountPlan,
		YearRange:      cfg.YearRange,
		Series:         cfg.Series,
		Logger:         logger,
	})
	bs, err := ex.Export(ctx, cfg.Owner, *exportYear)
	if err != nil {
		return err
	}
	return writeOutput(bs, "")
}

func report(fn func(io.Writer, *sie.Document) error) error {
	doc, err := parseInput()
	if err != nil {
		return err
	}
	return fn(os.Stdout, doc)
}

func spreadsheet(fallback string, fn func(*sie.Document) ([]byte, error)) error {
	doc, err := parseInput()
	if err != nil {
		return err
	}
	bs, err := fn(doc)
	if err != nil {
		return err
	}
	return writeOutput(bs, fallback)
}

// roundtrip prints a unified diff between the decoded input and what the
// encoder writes for the parsed document. Records the parser does not keep
// show up as removed lines.
func roundtrip(logger *slog.Logger) error {
	in, err := readInput()
	if err != nil {
		return err
	}
	dec := sie.Decode(in.data)
	doc := sie.ParseString(dec.Text)

	enc := &sie.Encoder{Logger: logger}
	out := enc.Text(doc)
	original := strings.ReplaceAll(dec.Text, "\r\n", "\n")

	patch := diff.GeneratePatch(in.name, original, out)
	if patch == "" {
		logger.Info("Input survives a round trip unchanged")
		return nil
	}
	fmt.Print(patch)
	return nil
}
