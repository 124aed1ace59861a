// Package session executes a command script against one database file.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gisdb/gisdb/internal/bloom"
	"github.com/gisdb/gisdb/internal/cache"
	"github.com/gisdb/gisdb/internal/command"
	"github.com/gisdb/gisdb/internal/dms"
	gisErrors "github.com/gisdb/gisdb/internal/errors"
	"github.com/gisdb/gisdb/internal/gnis"
	"github.com/gisdb/gisdb/internal/importer"
	"github.com/gisdb/gisdb/internal/index"
	"github.com/gisdb/gisdb/internal/manifest"
	"github.com/gisdb/gisdb/internal/observability"
	"github.com/gisdb/gisdb/internal/recordfile"
	"github.com/gisdb/gisdb/internal/report"
	"github.com/gisdb/gisdb/internal/spatial"
	"github.com/gisdb/gisdb/internal/storage"
	"github.com/gisdb/gisdb/pkg/types"
)

// maxScriptLine bounds a single script line.
const maxScriptLine = 64 * 1024

// Options configures a Session.
type Options struct {
	// DatabasePath is the record file. With Reset it is truncated, otherwise
	// its records are indexed when the world is set.
	DatabasePath string
	Reset        bool

	// ScriptName and LogName are only echoed in the world banner.
	ScriptName string
	LogName    string

	// Storage resolves import sources.
	Storage storage.ObjectStorage

	// Catalog records import provenance. Nil disables it.
	Catalog manifest.Catalog

	BloomExpectedItems     int
	BloomFalsePositiveRate float64
	SeparatorWidth         int
}

// Session owns every index and store for one run. It is not safe for
// concurrent use.
type Session struct {
	id   string
	opts Options

	records  *recordfile.File
	importer *importer.Importer
	names    *index.NameIndex
	spatial  *spatial.QuadTree
	cache    *cache.RecordCache
	filter   *bloom.NameFilter
	catalog  manifest.Catalog
	report   *report.Writer
	stats    *observability.SessionStats

	cmdNum int
	done   bool
}

// New opens the record file and builds empty indexes. The report is written
// to out.
func New(opts Options, out io.Writer) (*Session, error) {
	if opts.Storage == nil {
		return nil, gisErrors.NewValidationError(gisErrors.CodeMissingValue, "session needs an import storage")
	}
	records, err := recordfile.Open(opts.DatabasePath, opts.Reset)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.New().String(),
		opts:     opts,
		records:  records,
		importer: importer.New(opts.Storage, records),
		names:    index.NewNameIndex(),
		spatial:  spatial.New(),
		cache:    cache.NewRecordCache(),
		filter:   bloom.NewWithEstimates(opts.BloomExpectedItems, opts.BloomFalsePositiveRate),
		catalog:  opts.Catalog,
		report:   report.NewWriter(out, opts.SeparatorWidth),
		stats:    observability.NewSessionStats(),
		cmdNum:   1,
	}
	log.Printf("session %s: opened %s (%d bytes)", s.id, opts.DatabasePath, records.Size())
	return s, nil
}

// ID returns the session UUID.
func (s *Session) ID() string {
	return s.id
}

// Stats returns the session statistics.
func (s *Session) Stats() *observability.SessionStats {
	return s.stats
}

// Run executes script until quit or end of input. Command failures are
// written to the report and do not stop the run; only report write errors,
// script read errors and cancellation are returned.
func (s *Session) Run(ctx context.Context, script io.Reader) error {
	scanner := bufio.NewScanner(script)
	scanner.Buffer(make([]byte, 4096), maxScriptLine)

	for !s.done && scanner.Scan() {
		if err := ctx.Err(); err != nil {
			s.report.Flush()
			return err
		}
		s.execute(ctx, scanner.Text())
		if err := s.report.Err(); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		s.report.Flush()
		return gisErrors.NewScriptError(gisErrors.CodeBadArgument, fmt.Sprintf("failed to read script: %v", err))
	}
	if !s.done {
		log.Printf("session %s: script ended without quit", s.id)
	}
	return s.report.Flush()
}

func (s *Session) execute(ctx context.Context, line string) {
	cmd, err := command.Parse(line)
	if err != nil {
		s.report.Command(s.cmdNum, line)
		s.report.Error(err)
		s.report.Separator()
		s.stats.RecordCommand("invalid", 0, true)
		s.cmdNum++
		return
	}

	switch cmd.Kind {
	case command.KindBlank:
		return
	case command.KindComment:
		s.report.Comment(cmd.Line)
		return
	}

	start := time.Now()
	switch cmd.Kind {
	case command.KindWorld:
		err = s.world(ctx, cmd)
	case command.KindQuit:
		s.quit()
	default:
		s.report.Command(s.cmdNum, cmd.Line)
		switch cmd.Kind {
		case command.KindImport:
			err = s.importFile(ctx, cmd)
		case command.KindDebug:
			err = s.debug(ctx, cmd)
		case command.KindWhatIsAt:
			err = s.whatIsAt(cmd)
		case command.KindWhatIsIn:
			err = s.whatIsIn(cmd)
		case command.KindWhatIs:
			err = s.whatIs(cmd)
		}
		if err != nil {
			s.report.Error(err)
		}
		s.report.Separator()
	}
	if err != nil {
		log.Printf("session %s: command %d (%s) failed: %v", s.id, s.cmdNum, cmd.Kind, err)
	}
	s.stats.RecordCommand(string(cmd.Kind), time.Since(start), err != nil)
	if cmd.Numbered() {
		s.cmdNum++
	}
}

// world sets the bounds, writes the banner and indexes any records already
// in the file.
func (s *Session) world(ctx context.Context, cmd *command.Command) error {
	if err := s.spatial.SetWorld(cmd.West, cmd.East, cmd.South, cmd.North); err != nil {
		s.report.Command(s.cmdNum, cmd.Line)
		s.report.Error(err)
		s.report.Separator()
		return err
	}
	rect, _ := s.spatial.World()
	s.report.World(report.Banner{
		Line:     cmd.Line,
		Database: s.opts.DatabasePath,
		Script:   s.opts.ScriptName,
		Log:      s.opts.LogName,
		World:    rect,
	})

	if s.records.Size() == 0 {
		return nil
	}
	st, err := s.indexRange(0)
	if err != nil {
		return err
	}
	log.Printf("session %s: indexed %d existing records (%d names, %d locations)",
		s.id, st.Records, st.NamesAdded, st.LocationsAdded)
	s.logProvenance(ctx)
	return nil
}

// logProvenance logs the registered imports the existing records came from
// and how many bytes of the file no import accounts for.
func (s *Session) logProvenance(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	imports, err := s.catalog.ImportsForDatabase(ctx, s.opts.DatabasePath)
	if err != nil {
		log.Printf("[WARN] session %s: %v", s.id, err)
		return
	}
	var covered int64
	for _, imp := range imports {
		log.Printf("session %s: rebuilt [%d, %d) from import %s of %s (session %s)",
			s.id, imp.StartOffset, imp.EndOffset, imp.ImportID, imp.Source, imp.SessionID)
		covered += imp.EndOffset - imp.StartOffset
	}
	if unknown := s.records.Size() - covered; unknown > 0 {
		log.Printf("[WARN] session %s: %d bytes of %s come from no registered import",
			s.id, unknown, s.opts.DatabasePath)
	}
}

func (s *Session) importFile(ctx context.Context, cmd *command.Command) error {
	if _, ok := s.spatial.World(); !ok {
		return gisErrors.NewIndexError(gisErrors.CodeWorldNotSet, "world must be set before import")
	}

	res, importErr := s.importer.Import(ctx, cmd.Source)
	if res.Lines == 0 && importErr != nil {
		return importErr
	}

	st, err := s.indexRange(res.Start)
	if err != nil {
		return err
	}
	s.report.Imported(st)
	s.register(ctx, res, st)
	return importErr
}

// indexRange adds every record from loc to the end of the file to the
// indexes. Lines that do not parse are skipped.
func (s *Session) indexRange(from types.Locator) (report.ImportStats, error) {
	var st report.ImportStats
	err := s.records.Scan(from, func(loc types.Locator, line string) error {
		rec, err := gnis.Parse(line)
		if err != nil {
			log.Printf("session %s: skipping record at %d: %v", s.id, loc, err)
			return nil
		}
		st.Records++
		st.TotalNameLen += utf8.RuneCountInString(rec.Name)

		key := rec.Key()
		if s.names.Insert(key, loc) {
			st.NamesAdded++
		}
		s.filter.Add(key)

		if c, ok := rec.Coordinate(); ok && s.spatial.Insert(c, loc) {
			st.LocationsAdded++
		}
		return nil
	})
	return st, err
}

// register records provenance. Catalog failures are logged, not reported.
func (s *Session) register(ctx context.Context, res *importer.Result, st report.ImportStats) {
	if s.catalog == nil {
		return
	}
	_, err := s.catalog.RegisterImport(ctx, &manifest.ImportRecord{
		SessionID:      s.id,
		Source:         res.Source,
		DatabasePath:   s.opts.DatabasePath,
		StartOffset:    int64(res.Start),
		EndOffset:      int64(res.End),
		RecordCount:    int64(st.Records),
		NamesAdded:     int64(st.NamesAdded),
		LocationsAdded: int64(st.LocationsAdded),
	})
	if err != nil {
		log.Printf("[WARN] session %s: %v", s.id, err)
	}
}

// fetch returns the record at loc through the cache.
func (s *Session) fetch(loc types.Locator) (*gnis.Record, error) {
	text, ok := s.cache.Lookup(loc)
	if ok {
		s.stats.RecordFetch(observability.FetchCache)
	} else {
		var err error
		text, err = s.records.ReadAt(loc)
		if err != nil {
			return nil, err
		}
		s.cache.Insert(text, loc)
		s.stats.RecordFetch(observability.FetchStore)
	}
	return gnis.Parse(text)
}

func (s *Session) whatIsAt(cmd *command.Command) error {
	lat, long := dms.FormatLatitude(cmd.Args[0]), dms.FormatLongitude(cmd.Args[1])
	locs, ok := s.spatial.Find(types.NewCoordinate(cmd.Longitude, cmd.Latitude))
	if !ok {
		s.report.NothingAt(long, lat)
		return nil
	}
	s.report.FoundAtHeader(long, lat)
	for _, loc := range locs {
		rec, err := s.fetch(loc)
		if err != nil {
			return err
		}
		s.report.FoundAt(loc, rec.Name, rec.CountyName, rec.StateAlpha)
	}
	return nil
}

func (s *Session) whatIsIn(cmd *command.Command) error {
	lat, long := dms.FormatLatitude(cmd.Args[0]), dms.FormatLongitude(cmd.Args[1])
	entries := s.spatial.RangeQuery(cmd.Box())

	total := 0
	for _, e := range entries {
		total += len(e.Locators)
	}
	if total == 0 {
		s.report.NothingIn(long, cmd.HalfWidth, lat, cmd.HalfHeight)
		return nil
	}

	s.report.FoundInHeader(total, long, cmd.HalfWidth, lat, cmd.HalfHeight)
	for _, e := range entries {
		for _, loc := range e.Locators {
			rec, err := s.fetch(loc)
			if err != nil {
				return err
			}
			s.report.FoundIn(loc, rec.Name, rec.StateAlpha,
				dms.FormatLongitude(rec.PrimaryLongDMS), dms.FormatLatitude(rec.PrimaryLatDMS))
		}
	}
	return nil
}

func (s *Session) whatIs(cmd *command.Command) error {
	key := types.NewNameKey(cmd.Name, cmd.State)
	if !s.filter.MayContain(key) {
		s.stats.RecordBloomSkip()
		s.report.NoMatch(cmd.Name, cmd.State)
		return nil
	}
	locs, ok := s.names.Find(key)
	if !ok {
		s.report.NoMatch(cmd.Name, cmd.State)
		return nil
	}
	for _, loc := range locs {
		rec, err := s.fetch(loc)
		if err != nil {
			return err
		}
		s.report.Named(loc, rec.CountyName,
			dms.FormatLongitude(rec.PrimaryLongDMS), dms.FormatLatitude(rec.PrimaryLatDMS))
	}
	return nil
}

func (s *Session) debug(ctx context.Context, cmd *command.Command) error {
	switch cmd.Target {
	case command.DebugQuad:
		s.report.Section(s.spatial.Display)
	case command.DebugHash:
		s.report.Section(s.names.Display)
	case command.DebugPool:
		s.report.Section(s.cache.Display)
	case command.DebugBloom:
		s.report.Section(s.filter.Display)
	case command.DebugStats:
		s.displayStats()
	case command.DebugManifest:
		if s.catalog == nil {
			s.report.Printf("Import catalog is disabled.\n")
			return nil
		}
		var err error
		s.report.Section(func(w io.Writer) error {
			err = s.catalog.Display(ctx, w, s.id)
			if gisErrors.GetCategory(err) == gisErrors.ErrCategoryManifest {
				return nil
			}
			return err
		})
		return err
	}
	return nil
}

func (s *Session) displayStats() {
	m := s.cache.Metrics()
	s.report.Section(s.stats.Display)
	s.report.Printf("Pool hits: %d\nPool misses: %d\nPool evictions: %d\nPool hit rate: %.2f\n",
		m.Hits, m.Misses, m.Evictions, m.HitRate())
}

func (s *Session) quit() {
	s.report.Terminate(s.cmdNum)
	s.displayStats()
	s.report.Separator()
	s.done = true
}

// Close flushes the report and closes the record file. The catalog belongs
// to the caller.
func (s *Session) Close() error {
	ferr := s.report.Flush()
	if err := s.records.Close(); err != nil {
		return err
	}
	return ferr
}
