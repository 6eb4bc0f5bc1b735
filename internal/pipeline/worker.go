package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"segmark/internal/cleaner"
	"segmark/internal/kb"
	"segmark/internal/ocr"
	"segmark/internal/parser"
	"segmark/internal/splitter"
)

// Worker processes a single document job: parse to markdown, clean,
// split, upload to the knowledge base, and wait for indexing.
type Worker struct {
	kbc   *kb.Client
	ocrc  *ocr.Client
	split *splitter.Pipeline
	log   *slog.Logger

	datasetID   string
	rule        kb.ProcessRule
	kbPollEvery time.Duration

	ocrPollEvery time.Duration
	pdfFallback  bool
}

func NewWorker(kbc *kb.Client, ocrc *ocr.Client, split *splitter.Pipeline, log *slog.Logger, datasetID string, rule kb.ProcessRule, kbPollEvery, ocrPollEvery time.Duration, pdfFallback bool) *Worker {
	return &Worker{
		kbc:          kbc,
		ocrc:         ocrc,
		split:        split,
		log:          log,
		datasetID:    datasetID,
		rule:         rule,
		kbPollEvery:  kbPollEvery,
		ocrPollEvery: ocrPollEvery,
		pdfFallback:  pdfFallback,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	// Phase 1: Parse to markdown.
	job.SetStatus(StatusParsing, "parsing")
	markdown, title, err := w.parse(ctx, job)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title == "" && title != "" {
		job.SetTitle(title)
	}
	job.ContentHash = ContentHashHex([]byte(markdown))

	// Phase 2: Clean.
	job.SetStatus(StatusCleaning, "cleaning")
	cleaned := cleaner.Clean(markdown, w.split.Config().SplitMarker)
	if cleaned == "" {
		log.Warn("document empty after cleaning")
		job.AddError("no content after cleaning")
		job.SetStatus(StatusFailed, "cleaning")
		return
	}

	// Phase 3: Split.
	job.SetStatus(StatusSplitting, "splitting")
	out, stats := w.split.Split(cleaned)
	job.SetSplitStats(stats)
	log.Info("split document", "segments", stats.Segments, "splits", stats.Splits,
		"forced_length", stats.ForcedLengthSplits, "suppressed", stats.CooldownSuppressed)

	// Phase 4: Upload to the knowledge base.
	job.SetStatus(StatusUploading, "uploading")
	docName := fmt.Sprintf("[%s] %s.md", job.DocID, job.Title)

	var batch string
	for attempt := range MaxRetries {
		batch, err = w.kbc.CreateDocumentByText(ctx, w.datasetID, docName, out, w.rule)
		if err == nil || !IsRetryable(err) {
			break
		}
		log.Warn("retryable upload error", "attempt", attempt, "error", err)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			err = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		log.Error("upload failed", "error", err)
		job.AddError(fmt.Sprintf("upload: %s", err))
		job.SetStatus(StatusFailed, "uploading")
		return
	}
	job.SetKBRefs(batch, "")

	// Phase 5: Wait for indexing. The upload itself succeeded, so an
	// indexing failure leaves the document in the knowledge base and the
	// job partial.
	if err := w.kbc.WaitForIndexing(ctx, w.datasetID, batch, w.kbPollEvery); err != nil {
		log.Error("indexing failed", "batch", batch, "error", err)
		job.AddError(fmt.Sprintf("indexing: %s", err))
		job.SetStatus(StatusPartial, "indexing")
		return
	}

	log.Info("ingestion complete", "batch", batch, "segments", stats.Segments)
	job.SetStatus(StatusCompleted, "done")
}

// parse routes the raw file through a local parser where one exists,
// or through the OCR service otherwise.
func (w *Worker) parse(ctx context.Context, job *Job) (markdown, title string, err error) {
	if parser.IsSupportedExtension(job.Filename) {
		p, err := parser.ForFile(job.Filename)
		if err != nil {
			return "", "", err
		}
		if pdf, ok := p.(*parser.PDFParser); ok {
			pdf.FallbackPdftotext = w.pdfFallback
		}
		doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
		if err != nil {
			return "", "", err
		}
		return doc.Markdown, doc.Title, nil
	}

	if w.ocrc == nil {
		return "", "", fmt.Errorf("unsupported file type and OCR disabled: %s", job.Filename)
	}
	return w.parseViaOCR(ctx, job)
}

func (w *Worker) parseViaOCR(ctx context.Context, job *Job) (string, string, error) {
	batchID, err := w.ocrc.SubmitBatch(ctx, []ocr.File{{
		Name:    job.Filename,
		DataID:  job.DocID,
		Content: job.FileData(),
	}})
	if err != nil {
		return "", "", fmt.Errorf("ocr submit: %w", err)
	}

	results, err := w.ocrc.WaitForBatch(ctx, batchID, w.ocrPollEvery)
	if err != nil {
		return "", "", fmt.Errorf("ocr poll: %w", err)
	}
	for _, r := range results {
		if r.DataID != job.DocID {
			continue
		}
		md, err := w.ocrc.FetchMarkdown(ctx, r)
		if err != nil {
			return "", "", fmt.Errorf("ocr fetch: %w", err)
		}
		return md, "", nil
	}
	return "", "", fmt.Errorf("ocr batch %s has no result for %s", batchID, job.DocID)
}
