package sheet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/petrosul/recon-cli/internal/model"
	"github.com/petrosul/recon-cli/internal/resilience"
)

// Banner colors for the transport-sheet header row. Green signals the last
// run finished, red that it is in progress or died mid-write.
const (
	bannerGreen = "FF00B050"
	bannerRed   = "FFFF0000"
)

// Sink applies scheduled changes to transport workbooks. Implementations
// must tolerate being called for several files within one run.
type Sink interface {
	Apply(ctx context.Context, set model.UpdateSet) error
	Append(ctx context.Context, file string, recs []model.ShipmentRecord) error
	MarkBanner(ctx context.Context, file string, ok bool) error
	Flush(ctx context.Context) error
}

// XLSXSink writes UpdateSets into xlsx workbooks in place. Files are kept
// open and saved once on Flush; every save is retried because the workbooks
// live on a synced share and are intermittently locked by other readers.
type XLSXSink struct {
	layout  Layout
	retry   resilience.RetryConfig
	limiter *rate.Limiter
	log     *zap.SugaredLogger

	files map[string]*xlsx.File
	dirty map[string]bool
}

// NewXLSXSink builds a sink over the given layout. limiter may be nil to
// write unpaced.
func NewXLSXSink(layout Layout, retry resilience.RetryConfig, limiter *rate.Limiter) *XLSXSink {
	return &XLSXSink{
		layout:  layout,
		retry:   retry,
		limiter: limiter,
		log:     zap.S().Named("sink"),
		files:   make(map[string]*xlsx.File),
		dirty:   make(map[string]bool),
	}
}

// lockedFile reports whether a workbook open/save failure looks like the
// synced share holding a lock. Those clear once the sync client lets go of
// the file; a missing file never will.
func lockedFile(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	if errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EAGAIN) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"sharing violation",
		"being used by another process",
		"file is locked",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// classifyFileErr marks lock-shaped file errors transient so the retry
// policy gives them another attempt.
func classifyFileErr(err error) error {
	if err != nil && lockedFile(err) {
		return resilience.NewTransientError(err)
	}
	return err
}

func (s *XLSXSink) retryFor(operation string) resilience.RetryConfig {
	cfg := s.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("xlsx", operation)
	}
	return cfg
}

func (s *XLSXSink) sheetFor(ctx context.Context, file string) (*xlsx.Sheet, error) {
	f, ok := s.files[file]
	if !ok {
		var err error
		f, err = resilience.DoVal(ctx, s.retryFor("open"), func(ctx context.Context) (*xlsx.File, error) {
			f, err := xlsx.OpenFile(file)
			return f, classifyFileErr(err)
		})
		if err != nil {
			return nil, eris.Wrapf(err, "sink: open %s", file)
		}
		s.files[file] = f
	}

	sheet, ok := f.Sheet[s.layout.Sheet]
	if !ok {
		return nil, eris.Errorf("sink: sheet %q not found in %s", s.layout.Sheet, file)
	}
	return sheet, nil
}

// Apply writes one UpdateSet into its target row. Unknown column keys are a
// fatal error: they mean the layout file and the caller disagree.
func (s *XLSXSink) Apply(ctx context.Context, set model.UpdateSet) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "sink: rate limiter")
		}
	}

	sheet, err := s.sheetFor(ctx, set.Target.File)
	if err != nil {
		return err
	}

	cells := make([]string, 0, len(set.Changes))
	for key, value := range set.Changes {
		pos, ok := s.layout.Col(key)
		if !ok {
			return resilience.Fatal(fmt.Sprintf("sink: column %q not in layout", key), nil)
		}
		setCell(cellAt(sheet, set.Target.Row-1, pos), value)
		if letter, ok := s.layout.ColLetter(key); ok {
			cells = append(cells, fmt.Sprintf("%s%d", letter, set.Target.Row))
		}
	}

	s.dirty[set.Target.File] = true
	s.log.Debugw("applied update",
		"file", set.Target.File, "row", set.Target.Row, "cells", cells)
	return nil
}

// Append adds shipment rows at the bottom of the sheet, laid out per the
// column contract. Used for extra invoice legs that have no planned row.
func (s *XLSXSink) Append(ctx context.Context, file string, recs []model.ShipmentRecord) error {
	if len(recs) == 0 {
		return nil
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "sink: rate limiter")
		}
	}

	sheet, err := s.sheetFor(ctx, file)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		for _, key := range s.layout.Columns {
			setCell(row.AddCell(), shipmentValue(rec, key))
		}
	}

	s.dirty[file] = true
	s.log.Infow("appended rows", "file", file, "count", len(recs))
	return nil
}

// MarkBanner colors the header row of a workbook red at the start of a run
// and green once it completes.
func (s *XLSXSink) MarkBanner(ctx context.Context, file string, ok bool) error {
	sheet, err := s.sheetFor(ctx, file)
	if err != nil {
		return err
	}

	color := bannerRed
	if ok {
		color = bannerGreen
	}
	for i := range s.layout.Columns {
		cell := cellAt(sheet, 0, i)
		style := cell.GetStyle()
		if style == nil {
			style = xlsx.NewStyle()
		}
		style.Fill = *xlsx.NewFill("solid", color, color)
		style.ApplyFill = true
		cell.SetStyle(style)
	}

	s.dirty[file] = true
	return nil
}

// Flush saves every modified workbook. Each save runs under the retry
// policy; the first file that cannot be saved aborts the flush.
func (s *XLSXSink) Flush(ctx context.Context) error {
	for file, f := range s.files {
		if !s.dirty[file] {
			continue
		}

		err := resilience.Do(ctx, s.retryFor("save"), func(ctx context.Context) error {
			return classifyFileErr(f.Save(file))
		})
		if err != nil {
			return eris.Wrapf(err, "sink: save %s", file)
		}

		s.dirty[file] = false
		s.log.Infow("saved workbook", "file", file)
	}
	return nil
}

func setCell(cell *xlsx.Cell, value any) {
	switch v := value.(type) {
	case nil:
		cell.SetString("")
	case string:
		cell.SetString(v)
	case model.TripStatus:
		cell.SetString(string(v))
	case time.Time:
		if v.IsZero() {
			cell.SetString("")
			return
		}
		cell.SetString(v.Format("02/01/2006"))
	case float64:
		cell.SetFloat(v)
	case int:
		cell.SetInt(v)
	default:
		cell.SetValue(v)
	}
}

func shipmentValue(rec model.ShipmentRecord, key string) any {
	switch key {
	case model.ColTripID:
		return rec.TripID
	case model.ColScheduledDate:
		return rec.ScheduledDate
	case model.ColShipper:
		return rec.Shipper
	case model.ColOriginCity:
		return rec.OriginCity
	case model.ColOriginState:
		return rec.OriginState
	case model.ColBuyer:
		return rec.Buyer
	case model.ColConsignee:
		return rec.Consignee
	case model.ColReceiver:
		return rec.Receiver
	case model.ColDestCity:
		return rec.DestCity
	case model.ColDestState:
		return rec.DestState
	case model.ColProduct:
		return rec.Product
	case model.ColDriver:
		return rec.Driver
	case model.ColTractor:
		return rec.Tractor
	case model.ColTrailer1:
		return rec.Trailer1
	case model.ColTrailer2:
		return rec.Trailer2
	case model.ColCarrier:
		return rec.Carrier
	case model.ColInvoiceNumber:
		return rec.InvoiceNumber
	case model.ColVolume:
		return rec.VolumeLiters
	case model.ColLoadingDate:
		return rec.LoadingDate
	case model.ColLoadingTime:
		return rec.LoadingTime
	case model.ColArrivalDate:
		return rec.ArrivalDate
	case model.ColUnloadDate:
		return rec.UnloadDate
	case model.ColStatus:
		return rec.Status
	default:
		return ""
	}
}
