// Package dispatch runs one document through the whole pipeline: parser
// selection, row normalization, quarantine, reconciliation against the
// declared total, categorization and the atomic write. A bad document
// produces a failed Import, never an error that would abort a batch; only
// storage failures propagate.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billfold/billfold/pkg/models"
	"github.com/billfold/billfold/pkg/normalize"
	"github.com/billfold/billfold/pkg/parser"
	"github.com/billfold/billfold/pkg/quarantine"
	"github.com/billfold/billfold/pkg/rewards"
	"github.com/billfold/billfold/pkg/storage"
)

// Document is one inbound bill plus the format hint derived from the
// source email subject.
type Document struct {
	Path    string
	Hint    string
	EmailID string
	Bank    string
}

// Result is the outcome of dispatching one document. Quarantined rows are
// part of the result, not a side channel: extracted = stored + quarantined.
type Result struct {
	Import       models.Import
	Transactions []models.Transaction
	Quarantined  []quarantine.Row
	Duplicate    bool
}

// RowSink receives rows that failed normalization.
type RowSink interface {
	AppendRow(row quarantine.Row) error
}

// Categorizer assigns categories to normalized transactions.
type Categorizer interface {
	Categorize(tx models.Transaction) (string, string)
}

type Dispatcher struct {
	store       storage.Store
	registry    *parser.Registry
	categorizer Categorizer
	rowSink     RowSink
	rewardSink  rewards.WarnSink
	tolerance   decimal.Decimal
	logger      *log.Logger
}

func New(store storage.Store, registry *parser.Registry, categorizer Categorizer,
	rowSink RowSink, rewardSink rewards.WarnSink, tolerance decimal.Decimal, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		store:       store,
		registry:    registry,
		categorizer: categorizer,
		rowSink:     rowSink,
		rewardSink:  rewardSink,
		tolerance:   tolerance,
		logger:      logger,
	}
}

// Dispatch processes one document end to end. The returned error is
// non-nil only for storage failures; every document-level problem is
// reported through the Import status instead.
func (d *Dispatcher) Dispatch(ctx context.Context, doc Document) (*Result, error) {
	fileName := filepath.Base(doc.Path)

	hash, err := normalize.HashFile(doc.Path)
	if err != nil {
		d.logger.Warn("unreadable document", "file", fileName, "error", err)
		return d.saveFailed(ctx, doc, fileName, "", "", fmt.Sprintf("unreadable document: %v", err))
	}

	// Idempotency guard: byte-identical documents are never reprocessed.
	if existing, err := d.store.FindImportByHash(ctx, hash); err == nil {
		txs, err := d.store.TransactionsByImport(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("load duplicate import rows: %w", err)
		}
		d.logger.Info("duplicate document, returning existing import", "file", fileName, "import", existing.ID)
		return &Result{Import: *existing, Transactions: txs, Duplicate: true}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}

	p, specific := d.registry.Resolve(doc.Hint)
	ext, err := extract(p, doc.Path)
	if specific && (errors.Is(err, parser.ErrCannotParse) || errors.Is(err, errParserPanic)) {
		d.logger.Warn("specific parser gave up, falling back to generic", "parser", p.Name(), "file", fileName)
		p = d.registry.Generic()
		ext, err = extract(p, doc.Path)
	}
	if err != nil {
		d.logger.Warn("document failed to parse", "parser", p.Name(), "file", fileName, "error", err)
		return d.saveFailed(ctx, doc, fileName, hash, p.Name(), fmt.Sprintf("parse failed: %v", err))
	}
	if len(ext.Lines) == 0 {
		return d.saveFailed(ctx, doc, fileName, hash, p.Name(), "no transaction rows found")
	}

	imp := models.Import{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentHash: hash,
		EmailID:     doc.EmailID,
		ParserUsed:  p.Name(),
		Status:      models.ImportPending,
		CreatedAt:   time.Now().UTC(),
	}

	txs, quarantined := d.normalizeLines(ext, doc, &imp)

	status, notes := d.reconcile(ext.DeclaredTotal, txs, len(quarantined))
	imp.Finalize(status, notes)

	sums := rewardSummaries(ext, p.Name(), imp.ID)
	rewards.ValidateAll(sums, d.rewardSink, d.logger)

	if err := d.store.SaveImport(ctx, &imp, txs, sums); err != nil {
		if errors.Is(err, storage.ErrDuplicateHash) {
			// A concurrent worker beat us to the same bytes.
			existing, ferr := d.store.FindImportByHash(ctx, hash)
			if ferr != nil {
				return nil, fmt.Errorf("resolve duplicate hash: %w", ferr)
			}
			existingTxs, terr := d.store.TransactionsByImport(ctx, existing.ID)
			if terr != nil {
				return nil, fmt.Errorf("load duplicate import rows: %w", terr)
			}
			return &Result{Import: *existing, Transactions: existingTxs, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("persist import: %w", err)
	}

	d.logger.Info("document imported",
		"file", fileName, "import", imp.ID, "status", imp.Status,
		"rows", len(txs), "quarantined", len(quarantined))
	return &Result{Import: imp, Transactions: txs, Quarantined: quarantined}, nil
}

// normalizeLines converts raw parser output to transactions. A row that
// fails normalization is quarantined with its reason and excluded, never
// silently dropped. Card masking happens here, before any value can be
// logged or stored.
func (d *Dispatcher) normalizeLines(ext *parser.Extraction, doc Document, imp *models.Import) ([]models.Transaction, []quarantine.Row) {
	var txs []models.Transaction
	var quarantined []quarantine.Row

	for _, line := range ext.Lines {
		tx, err := d.normalizeLine(line, ext, doc, imp)
		if err != nil {
			row := quarantine.Row{
				ImportID: imp.ID,
				Raw:      normalize.MaskText(line.Raw),
				Reason:   err.Error(),
			}
			quarantined = append(quarantined, row)
			d.logger.Warn("row quarantined", "import", imp.ID, "reason", err, "raw", row.Raw)
			if d.rowSink != nil {
				if serr := d.rowSink.AppendRow(row); serr != nil {
					d.logger.Error("failed to write quarantine log", "error", serr)
				}
			}
			continue
		}
		txs = append(txs, tx)
	}
	return txs, quarantined
}

func (d *Dispatcher) normalizeLine(line parser.RawLine, ext *parser.Extraction, doc Document, imp *models.Import) (models.Transaction, error) {
	date, err := normalize.ParseDate(line.Date)
	if err != nil {
		return models.Transaction{}, err
	}
	amount, currency, err := normalize.ParseAmount(line.Amount)
	if err != nil {
		return models.Transaction{}, err
	}

	txType := line.Type
	switch txType {
	case models.TypeDebit:
		if amount.IsPositive() {
			amount = amount.Neg()
		}
	case models.TypeCredit:
		amount = amount.Abs()
	default:
		if amount.IsNegative() {
			txType = models.TypeDebit
		} else {
			txType = models.TypeCredit
		}
	}

	if currency == "" {
		currency = ext.Currency
	}
	if currency == "" {
		currency = "INR"
	}

	description := normalize.MaskText(strings.TrimSpace(line.Description))

	var rewardPoints *int
	if line.RewardPoints != "" {
		if v, err := strconv.Atoi(strings.ReplaceAll(line.RewardPoints, ",", "")); err == nil {
			rewardPoints = &v
		}
	}

	tx := models.Transaction{
		Date:          date,
		Description:   description,
		Merchant:      normalize.Merchant(description),
		Amount:        amount,
		Currency:      currency,
		Type:          txType,
		RewardPoints:  rewardPoints,
		CardNumber:    normalize.CardLast4(line.CardNumber),
		CardHolder:    strings.TrimSpace(line.CardHolder),
		SourceBank:    doc.Bank,
		SourceDoc:     imp.FileName,
		StatementDate: ext.StatementDate,
		ParserUsed:    imp.ParserUsed,
		ImportID:      imp.ID,
		CreatedAt:     imp.CreatedAt,
	}
	tx.Category, tx.SubCategory = d.categorizer.Categorize(tx)
	return tx, nil
}

// reconcile sums the normalized amounts against the declared total.
// A mismatch beyond tolerance is soft: the import goes through as partial
// with the delta recorded in notes.
func (d *Dispatcher) reconcile(declaredTotal string, txs []models.Transaction, quarantinedCount int) (models.ImportStatus, string) {
	if len(txs) == 0 {
		return models.ImportFailed, "no rows survived normalization"
	}

	var notes []string
	if quarantinedCount > 0 {
		notes = append(notes, fmt.Sprintf("%d row(s) quarantined", quarantinedCount))
	}

	status := models.ImportSuccess
	if declaredTotal != "" {
		declared, _, err := normalize.ParseAmount(declaredTotal)
		if err != nil {
			notes = append(notes, fmt.Sprintf("unreadable declared total %q", declaredTotal))
		} else {
			sum := decimal.Zero
			for _, tx := range txs {
				sum = sum.Add(tx.Amount)
			}
			delta := sum.Sub(declared)
			if delta.Abs().GreaterThan(d.tolerance) {
				status = models.ImportPartial
				notes = append(notes, fmt.Sprintf(
					"reconciliation delta %s (extracted %s, declared %s)",
					delta.String(), sum.String(), declared.String()))
			}
		}
	}
	return status, strings.Join(notes, "; ")
}

func (d *Dispatcher) saveFailed(ctx context.Context, doc Document, fileName, hash, parserName, reason string) (*Result, error) {
	imp := models.Import{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentHash: hash,
		EmailID:     doc.EmailID,
		ParserUsed:  parserName,
		Status:      models.ImportFailed,
		Notes:       reason,
		CreatedAt:   time.Now().UTC(),
	}
	if err := d.store.SaveImport(ctx, &imp, nil, nil); err != nil {
		return nil, fmt.Errorf("persist failed import: %w", err)
	}
	return &Result{Import: imp}, nil
}

var errParserPanic = errors.New("parser panic")

// extract shields the pipeline from parser panics: a crashing specific
// parser falls through to the generic one, a crashing generic parser is a
// failed document, never a crashed batch.
func extract(p parser.Parser, path string) (ext *parser.Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errParserPanic, r)
		}
	}()
	return p.ExtractLines(path)
}

func rewardSummaries(ext *parser.Extraction, parserName, importID string) []models.RewardSummary {
	sums := make([]models.RewardSummary, 0, len(ext.Rewards))
	for _, block := range ext.Rewards {
		sums = append(sums, models.RewardSummary{
			StatementDate:  block.StatementDate,
			CardNumber:     normalize.CardLast4(block.CardNumber),
			CardHolder:     block.CardHolder,
			OpeningBalance: block.OpeningBalance,
			Earned:         block.Earned,
			Redeemed:       block.Redeemed,
			AdjustedLapsed: block.AdjustedLapsed,
			ClosingBalance: block.ClosingBalance,
			ParserUsed:     parserName,
			ImportID:       importID,
		})
	}
	return sums
}
