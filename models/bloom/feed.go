package bloom

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/iscar-ucm/xdevs-go/devs"
)

// resetEveryRows mirrors the original's once-a-day RESET trigger,
// expressed as a row count instead of a float timestamp modulo check:
// the input feed is sampled once a minute, so 1440 rows is one day.
const resetEveryRows = 1440

// row is one parsed line of the driving-variable CSV, matching the
// column order: timestamp,lat,lon,alg,bth,nox,dox,sun,temperature,u,v,wind_x,wind_y.
type row struct {
	timestamp, lat, lon             float64
	alg, bth, nox, dox, sun         float64
	temperature, u, v, windX, windY float64
}

func parseRow(fields []string) (row, error) {
	var r row
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return row{}, fmt.Errorf("column %d: %w", i, err)
		}
		vals[i] = v
	}
	if len(vals) < 13 {
		return row{}, fmt.Errorf("expected 13 columns, got %d", len(vals))
	}
	r.timestamp, r.lat, r.lon = vals[0], vals[1], vals[2]
	r.alg, r.bth, r.nox, r.dox, r.sun = vals[3], vals[4], vals[5], vals[6], vals[7]
	r.temperature, r.u, r.v, r.windX, r.windY = vals[8], vals[9], vals[10], vals[11], vals[12]
	return r, nil
}

// FeedState drives the bloom model from a CSV feed and mirrors the
// model's emitted readings to an output CSV.
type FeedState struct {
	sigma, sigmaPrev float64
	cur              row
	rowsRead         int
	exhausted        bool

	reader *csv.Reader
	writer *csv.Writer
	in     *os.File
	out    *os.File
}

// FeedIn carries the bloom model's emitted readings for logging.
type FeedIn struct {
	Collected *devs.Port[ExitData]
}

func (b *FeedIn) IsEmpty() bool { return b.Collected.IsEmpty() }
func (b *FeedIn) Clear()        { b.Collected.Clear() }

// FeedOut re-emits the current CSV row's driving variables plus an
// occasional RESET command.
type FeedOut struct {
	Cmd *devs.Port[string]
	Dox *devs.Port[float64]
	Nox *devs.Port[float64]
	Sun *devs.Port[float64]
	Wfu *devs.Port[float64]
	Wfv *devs.Port[float64]
}

func (b *FeedOut) IsEmpty() bool {
	return b.Cmd.IsEmpty() && b.Dox.IsEmpty() && b.Nox.IsEmpty() && b.Sun.IsEmpty() && b.Wfu.IsEmpty() && b.Wfv.IsEmpty()
}

func (b *FeedOut) Clear() {
	b.Cmd.Clear()
	b.Dox.Clear()
	b.Nox.Clear()
	b.Sun.Clear()
	b.Wfu.Clear()
	b.Wfv.Clear()
}

func (s *FeedState) readNext() error {
	record, err := s.reader.Read()
	if err == io.EOF {
		s.exhausted = true
		s.sigma = math.Inf(1) // passivate: no more rows to drive the next cycle
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading driving-variable feed: %w", err)
	}
	r, err := parseRow(record)
	if err != nil {
		return fmt.Errorf("parsing driving-variable feed: %w", err)
	}
	s.sigma = (r.timestamp - s.sigmaPrev) * 60 // minutes to seconds
	s.sigmaPrev = r.timestamp
	s.cur = r
	s.rowsRead++
	return nil
}

func (s *FeedState) writeExit(e ExitData) error {
	return s.writer.Write([]string{
		e.ID, e.Source,
		strconv.FormatFloat(e.Timestamp, 'f', -1, 64),
		strconv.FormatFloat(e.Lat, 'f', -1, 64),
		strconv.FormatFloat(e.Lon, 'f', -1, 64),
		strconv.FormatFloat(e.Breath, 'f', -1, 64),
		strconv.FormatFloat(e.Photo, 'f', -1, 64),
		strconv.FormatFloat(e.Size, 'f', -1, 64),
		strconv.FormatBool(e.IsBloom),
	})
}

// NewFeed opens the input and output CSV files and builds the feed
// atomic model. Closing the underlying files is the caller's
// responsibility via Close, once simulation has finished.
func NewFeed(inputPath, outputPath string) (*devs.Atomic[FeedState, FeedIn, FeedOut], error) {
	inFile, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("opening driving-variable feed: %w", err)
	}
	outFile, err := os.Create(outputPath)
	if err != nil {
		inFile.Close()
		return nil, fmt.Errorf("creating bloom-output file: %w", err)
	}

	reader := csv.NewReader(inFile)
	if _, err := reader.Read(); err != nil { // discard the header row
		inFile.Close()
		outFile.Close()
		return nil, fmt.Errorf("reading driving-variable feed header: %w", err)
	}

	state := FeedState{
		reader: reader,
		writer: csv.NewWriter(outFile),
		in:     inFile,
		out:    outFile,
	}

	in := FeedIn{Collected: devs.NewPort[ExitData]("collected", 1)}
	out := FeedOut{
		Cmd: devs.NewPort[string]("cmd", 1),
		Dox: devs.NewPort[float64]("dox", 1),
		Nox: devs.NewPort[float64]("nox", 1),
		Sun: devs.NewPort[float64]("sun", 1),
		Wfu: devs.NewPort[float64]("wfu", 1),
		Wfv: devs.NewPort[float64]("wfv", 1),
	}

	atomic := devs.NewAtomic("feed", state, in, out,
		devs.AtomicFuncs[FeedState, FeedIn, FeedOut]{
			Start: func(s *FeedState) {
				_ = s.writer.Write([]string{"id", "source", "timestamp", "lat", "lon", "breath", "photo", "size", "is_bloom"})
				if err := s.readNext(); err != nil {
					panic(&devs.Error{Kind: devs.UserPanic, Message: "bloom feed: initial read failed", Cause: err})
				}
			},
			DeltaExt: func(s *FeedState, e float64, x *FeedIn) {
				s.sigma -= e
				if x.Collected.IsEmpty() {
					return
				}
				data := last(x.Collected.Values())
				if err := s.writeExit(data); err != nil {
					panic(&devs.Error{Kind: devs.UserPanic, Message: "bloom feed: writing output row failed", Cause: err})
				}
				if s.exhausted {
					panic(&devs.Error{Kind: devs.UserPanic, Message: "bloom feed: driving-variable feed exhausted"})
				}
			},
			DeltaInt: func(s *FeedState) {
				if err := s.readNext(); err != nil {
					panic(&devs.Error{Kind: devs.UserPanic, Message: "bloom feed: row read failed", Cause: err})
				}
			},
			Lambda: func(s *FeedState, out *FeedOut) {
				_ = out.Dox.AddValue(s.cur.dox)
				_ = out.Nox.AddValue(s.cur.nox)
				_ = out.Sun.AddValue(s.cur.sun)
				_ = out.Wfu.AddValue(s.cur.u)
				_ = out.Wfv.AddValue(s.cur.v)
				if s.rowsRead > 0 && s.rowsRead%resetEveryRows == 0 {
					_ = out.Cmd.AddValue("RESET")
				}
			},
			Ta: func(s *FeedState) float64 { return s.sigma },
		})

	return atomic, nil
}

// RowsRead reports how many driving-variable rows the feed has
// consumed so far, for progress reporting.
func RowsRead(a *devs.Atomic[FeedState, FeedIn, FeedOut]) int {
	return a.State.rowsRead
}

// Close flushes the output writer and closes both underlying files.
func Close(a *devs.Atomic[FeedState, FeedIn, FeedOut]) error {
	a.State.writer.Flush()
	if err := a.State.writer.Error(); err != nil {
		return err
	}
	if err := a.State.out.Close(); err != nil {
		return err
	}
	return a.State.in.Close()
}
