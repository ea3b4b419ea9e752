// Package extract walks session dataset archives, selects the
// authoritative document revision per bill, fetches its raw bytes and
// hands them to normalization.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/jonesrussell/legisync/internal/domain"
	"github.com/jonesrussell/legisync/internal/ledger"
	"github.com/jonesrussell/legisync/internal/logger"
	"github.com/jonesrussell/legisync/internal/normalize"
	"github.com/jonesrussell/legisync/internal/pipeline"
	"github.com/jonesrussell/legisync/internal/storage"
	"github.com/jonesrussell/legisync/internal/summary"
)

const (
	// defaultRetention bounds bills by chosen-revision age.
	defaultRetention = 2 * 365 * 24 * time.Hour
	// progressEvery controls periodic progress logging during archive
	// iteration.
	progressEvery = 25
)

// billEntryPattern matches per-bill descriptor paths inside a session
// archive: jurisdiction/year-range/bill/id.json.
var billEntryPattern = regexp.MustCompile(`(?i)^[a-z]{2}/[^/]+/bill/[^/]+\.json$`)

// billDescriptor is the wire wrapper around a per-bill descriptor.
type billDescriptor struct {
	Bill domain.BillDetail `json:"bill"`
}

// Options control one extraction run.
type Options struct {
	// StateCode is the 2-letter jurisdiction code to process.
	StateCode string
	// SessionID restricts processing to one session (0 = all retained).
	SessionID int
	// After is an exclusive key cursor for resumability.
	After string
	// Limit bounds bills processed this run (0 = unlimited).
	Limit int
	// Skip leaves bills alone when their text item already exists.
	Skip bool
	// SessionLimit bounds sessions per run, most recent first.
	SessionLimit int
	// Retention drops bills whose chosen revision is older than this.
	Retention time.Duration
}

// Stats reports the outcome of one extraction run.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
}

// Extractor runs the per-bill extraction pipeline over session archives.
type Extractor struct {
	store      storage.Interface
	ledger     *ledger.Ledger
	documents  *DocumentFetcher
	normalizer *normalize.Normalizer
	summaries  *summary.Store
	logger     logger.Interface
	now        func() time.Time
}

// NewExtractor creates an extractor over the given collaborators.
func NewExtractor(store storage.Interface, led *ledger.Ledger, docs *DocumentFetcher, norm *normalize.Normalizer, sums *summary.Store, log logger.Interface) *Extractor {
	return &Extractor{
		store:      store,
		ledger:     led,
		documents:  docs,
		normalizer: norm,
		summaries:  sums,
		logger:     log.WithComponent("extract"),
		now:        time.Now,
	}
}

// Run processes the retained session archives for one jurisdiction, most
// recent sessions first.
func (e *Extractor) Run(ctx context.Context, run *pipeline.Run, listing *domain.DatasetListing, opts Options) (Stats, error) {
	jur, ok := domain.JurisdictionByCode(opts.StateCode)
	if !ok {
		return Stats{}, fmt.Errorf("unknown jurisdiction code %q", opts.StateCode)
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}

	sessions := listing.SessionsForState(jur.ID)
	if opts.SessionID != 0 {
		sessions = filterSession(sessions, opts.SessionID)
	}
	if opts.SessionLimit > 0 && len(sessions) > opts.SessionLimit {
		sessions = sessions[:opts.SessionLimit]
	}

	var stats Stats
	for _, session := range sessions {
		if opts.Limit > 0 && run.Processed >= opts.Limit {
			break
		}
		if err := e.runSession(ctx, run, jur, session, opts, &stats); err != nil {
			return stats, err
		}
	}

	e.logger.Info("Extraction run complete", "run_id", run.ID,
		"processed", stats.Processed, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

// runSession walks one session archive and processes its bill descriptors.
func (e *Extractor) runSession(ctx context.Context, run *pipeline.Run, jur domain.Jurisdiction, session domain.SessionEntry, opts Options, stats *Stats) error {
	archiveName := domain.DatasetName(jur.Code, session.SessionID, "zip")

	data, err := e.store.Get(ctx, archiveName)
	if errors.Is(err, storage.ErrNotFound) {
		e.logger.Warn("Session archive missing, skipping", "name", archiveName)
		return nil
	}
	if err != nil {
		return err
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("Session archive unreadable, skipping", "name", archiveName, "error", err)
		stats.Failed++
		run.Failed++
		return nil
	}

	for _, file := range reader.File {
		if opts.Limit > 0 && run.Processed >= opts.Limit {
			e.logger.Info("Run limit reached, stopping archive iteration", "limit", opts.Limit)
			return nil
		}
		if !billEntryPattern.MatchString(file.Name) {
			continue
		}

		if procErr := e.processEntry(ctx, run, jur, session, file, opts, stats); procErr != nil {
			return procErr
		}
		if total := stats.Processed + stats.Skipped + stats.Failed; total > 0 && total%progressEvery == 0 {
			e.logger.Info("Extraction progress", "archive", archiveName,
				"processed", stats.Processed, "skipped", stats.Skipped, "failed", stats.Failed)
		}
	}
	return nil
}

// processEntry handles one per-bill descriptor. Data errors skip the
// bill; only storage and ledger failures abort the run.
func (e *Extractor) processEntry(ctx context.Context, run *pipeline.Run, jur domain.Jurisdiction, session domain.SessionEntry, file *zip.File, opts Options, stats *Stats) error {
	bill, err := readDescriptor(file)
	if err != nil {
		e.logger.Warn("Unparsable bill descriptor, skipping", "entry", file.Name, "error", err)
		stats.Failed++
		run.Failed++
		return nil
	}

	rev, earliestYear, ok := bill.LatestText()
	if !ok {
		e.logger.Debug("Bill has no document revisions, skipping", "bill", bill.Number)
		stats.Skipped++
		return nil
	}
	if revDate := rev.ParsedDate(); revDate.IsZero() || e.now().Sub(revDate) > opts.Retention {
		stats.Skipped++
		return nil
	}

	year := earliestYear
	if year == 0 {
		year = session.YearStart
	}
	key := domain.BillKey(jur.Code, bill.Number, bill.SessionID, year)
	if opts.After != "" && key <= opts.After {
		stats.Skipped++
		return nil
	}

	if err := e.summaries.Upsert(ctx, &domain.Summary{
		Key:          key,
		BillID:       bill.BillID,
		Date:         rev.ParsedDate(),
		Title:        domain.ShrinkToSentence(bill.Title, domain.TitleLimit),
		Summary:      domain.ShrinkToSentence(bill.Summary, domain.SummaryLimit),
		CiteURL:      rev.StateLink,
		Jurisdiction: jur.Code,
	}); err != nil {
		return err
	}

	return e.extractBill(ctx, run, key, bill, rev, opts, stats)
}

// extractBill fetches and normalizes the chosen revision unless the
// existing text item is already current.
func (e *Extractor) extractBill(ctx context.Context, run *pipeline.Run, key string, bill *domain.BillDetail, rev domain.Revision, opts Options, stats *Stats) error {
	textName := key + ".txt"

	existing, err := e.ledger.Find(ctx, textName, e.store.Backend())
	if err != nil {
		return err
	}

	citeOverride := ""
	if existing != nil {
		if opts.Skip {
			stats.Skipped++
			return nil
		}
		// Recover the previously resolved citation, and regenerate only
		// when the descriptor hash moved.
		if doc, getErr := e.store.Get(ctx, textName); getErr == nil {
			if header, parsed := normalize.ParseStoredHeader(doc); parsed {
				citeOverride = header.CiteURL
			}
		}
		if existing.Hash == bill.Hash {
			stats.Skipped++
			return nil
		}
	}

	doc, err := e.documents.Fetch(ctx, run, key, bill, rev)
	if err != nil {
		e.logger.Warn("Document fetch failed, bill not processed", "key", key, "error", err)
		stats.Failed++
		run.Failed++
		return nil
	}

	lines, err := e.linesFor(doc)
	if err != nil {
		e.logger.Warn("Document conversion failed, bill not processed", "key", key, "ext", doc.Ext, "error", err)
		stats.Failed++
		run.Failed++
		return nil
	}

	cite := doc.CiteURL
	if citeOverride != "" {
		cite = citeOverride
	}

	text := e.normalizer.Render(&normalize.Header{
		FileName: textName,
		Hash:     bill.Hash,
		Date:     rev.ParsedDate(),
		BillID:   fmt.Sprintf("%d", bill.BillID),
		CiteURL:  cite,
		Title:    domain.ShrinkToSentence(bill.Title, domain.TitleLimit),
		Summary:  domain.ShrinkToSentence(bill.Summary, domain.SummaryLimit),
	}, lines)

	if err := e.store.Put(ctx, textName, []byte(text)); err != nil {
		return err
	}
	if err := e.ledger.Upsert(ctx, &domain.LedgerEntry{
		Name:        textName,
		Backend:     e.store.Backend(),
		Hash:        bill.Hash,
		Date:        rev.ParsedDate(),
		Size:        int64(len(text)),
		Description: bill.Number,
	}); err != nil {
		return err
	}

	stats.Processed++
	run.Processed++
	return nil
}

// linesFor routes the fetched document by extension.
func (e *Extractor) linesFor(doc *Document) ([]string, error) {
	switch doc.Ext {
	case "html":
		return normalize.HTMLToLines(doc.Data)
	case "pdf":
		return normalize.PDFToLines(doc.Data)
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedMime, doc.Ext)
	}
}

// readDescriptor parses one per-bill JSON descriptor from the archive.
func readDescriptor(file *zip.File) (*domain.BillDetail, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read archive entry: %w", err)
	}

	var wrapper billDescriptor
	if jsonErr := json.Unmarshal(data, &wrapper); jsonErr != nil {
		return nil, fmt.Errorf("parse bill descriptor: %w", jsonErr)
	}
	if wrapper.Bill.BillID == 0 || wrapper.Bill.Number == "" {
		return nil, errors.New("bill descriptor missing required fields")
	}
	return &wrapper.Bill, nil
}

// filterSession narrows a session list to one session id.
func filterSession(sessions []domain.SessionEntry, sessionID int) []domain.SessionEntry {
	for _, s := range sessions {
		if s.SessionID == sessionID {
			return []domain.SessionEntry{s}
		}
	}
	return nil
}
