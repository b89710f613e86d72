package parser

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/stormlab/shipsdb/pkg/types"
)

// Row name markers delimiting storm blocks.
const (
	rowHead = "HEAD"
	rowLast = "LAST"
)

// headerTimeLayout is the composed YYYYMMDDHH header timestamp.
const headerTimeLayout = "2006010215"

// FormatError describes a fatal structural problem in the raw input.
// Structural problems are never skipped: continuing past one could
// desynchronize a block boundary and corrupt every following row.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("diagnostics format error at line %d: %s", e.Line, e.Msg)
}

// Fields splits a raw line into its whitespace-delimited tokens.
func Fields(line string) []string {
	return strings.Fields(line)
}

// RowName resolves a line's row name. If the final token is all digits it
// is a continuation index and the name is the second-to-last token;
// otherwise the name is the last token.
func RowName(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if len(fields) > 1 && allDigits(last) {
		return fields[len(fields)-2]
	}
	return last
}

// trimContinuation strips a trailing all-digit continuation token so the
// row name is the last remaining field.
func trimContinuation(fields []string) []string {
	if len(fields) > 1 && allDigits(fields[len(fields)-1]) {
		return fields[:len(fields)-1]
	}
	return fields
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

type paramVal struct {
	name string
	val  int64
}

// BlockReader consumes the diagnostics text sequentially and emits one
// finalized observation row per storm block. It is a lazy, finite,
// non-restartable stream: Next advances to the next row, Row returns it,
// and Err reports the first fatal error once Next has returned false.
type BlockReader struct {
	sc      *bufio.Scanner
	exclude types.Exclusion
	logger  *slog.Logger

	line    int
	started bool
	eof     bool

	paramNames []string       // first-block row names, before exclusion filtering
	namesDone  bool           // set at the first LAST line or first finalized row
	colIndex   map[string]int // retained name -> position in Row.Values
	retained   []string

	pendKey   *types.Row // identifying key of the block being accumulated
	pendPairs []paramVal // first block: ordered name/value pairs
	pendVals  []int64    // later blocks: positional values

	row      types.Row
	err      error
	warnings int
}

// NewBlockReader creates a BlockReader over r. Parameters on the exclusion
// list are dropped per row; the logger receives non-fatal audit warnings
// such as a header year disagreeing with the ATCF identifier.
func NewBlockReader(r io.Reader, exclude types.Exclusion, logger *slog.Logger) *BlockReader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &BlockReader{
		sc:      sc,
		exclude: exclude,
		logger:  logger,
	}
}

// Next advances to the next finalized row. A row is only flushed when the
// next block's HEAD line is seen or the input ends, never eagerly on LAST.
func (r *BlockReader) Next() bool {
	if r.err != nil {
		return false
	}
	for !r.eof {
		if !r.sc.Scan() {
			if err := r.sc.Err(); err != nil {
				r.err = err
				return false
			}
			r.eof = true
			break
		}
		r.line++
		fields := strings.Fields(r.sc.Text())
		if len(fields) == 0 {
			// A blank line only occurs at true end of input.
			r.eof = true
			break
		}
		name := RowName(fields)
		if !r.started {
			if name != rowHead {
				r.err = &FormatError{Line: r.line, Msg: "expected header line"}
				return false
			}
			r.started = true
		}
		switch name {
		case rowHead:
			emit := r.pendKey != nil
			if emit {
				r.row = r.finalize()
			}
			if err := r.beginBlock(trimContinuation(fields)); err != nil {
				r.err = err
				return false
			}
			if emit {
				return true
			}
		case rowLast:
			// Pure block-termination sentinel; carries no data.
			r.namesDone = true
		default:
			if err := r.param(fields, name); err != nil {
				r.err = err
				return false
			}
		}
	}
	if r.pendKey != nil {
		r.row = r.finalize()
		r.pendKey = nil
		return true
	}
	if !r.started {
		r.err = &FormatError{Line: r.line, Msg: "empty input, expected header line"}
	}
	return false
}

// Row returns the row produced by the last successful Next.
func (r *BlockReader) Row() types.Row {
	return r.row
}

// Err returns the first fatal error encountered, or nil on normal
// exhaustion.
func (r *BlockReader) Err() error {
	return r.err
}

// ParamNames returns the first block's parameter-name ordering before any
// exclusion filtering. Valid once Next has returned at least one row.
func (r *BlockReader) ParamNames() []string {
	return r.paramNames
}

// Retained returns the exclusion-filtered parameter ordering that
// Row.Values is positionally aligned with. Valid once Next has returned at
// least one row.
func (r *BlockReader) Retained() []string {
	return r.retained
}

// Warnings returns the number of non-fatal anomalies noticed so far.
func (r *BlockReader) Warnings() int {
	return r.warnings
}

// beginBlock starts a new pending row from a HEAD line. The header's
// 2-digit year is ambiguous across centuries, so the timestamp always takes
// the 4-digit year from the ATCF identifier suffix.
func (r *BlockReader) beginBlock(fields []string) error {
	if len(fields) < 4 {
		return &FormatError{Line: r.line, Msg: "header line has too few fields"}
	}
	atcfID := fields[len(fields)-2]
	yymmdd := fields[1]
	utcHour := fields[2]
	if len(atcfID) < 4 {
		return &FormatError{Line: r.line, Msg: fmt.Sprintf("storm identifier %q too short for a year suffix", atcfID)}
	}
	if len(yymmdd) != 6 {
		return &FormatError{Line: r.line, Msg: fmt.Sprintf("bad header date field %q", yymmdd)}
	}
	stamp := atcfID[len(atcfID)-4:] + yymmdd[2:] + utcHour
	t, err := time.ParseInLocation(headerTimeLayout, stamp, time.UTC)
	if err != nil {
		return &FormatError{Line: r.line, Msg: fmt.Sprintf("header fields compose invalid timestamp %q", stamp)}
	}
	if atcfID[len(atcfID)-2:] != yymmdd[:2] {
		r.warnings++
		r.logger.Warn("header year disagrees with ATCF identifier",
			"atcf_id", atcfID, "date_field", yymmdd, "line", r.line)
	}
	r.pendKey = &types.Row{ATCFID: atcfID, Time: t}
	if r.colIndex != nil {
		r.pendVals = r.emptyValues()
	}
	return nil
}

// param records one diagnostic parameter value for the current block's
// hour-0 observation.
func (r *BlockReader) param(fields []string, name string) error {
	if !r.namesDone {
		r.paramNames = append(r.paramNames, name)
	}
	if r.exclude.Excluded(name) {
		return nil
	}
	if len(fields) < 3 {
		return &FormatError{Line: r.line, Msg: fmt.Sprintf("parameter line %s has too few fields", name)}
	}
	v, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return &FormatError{Line: r.line, Msg: fmt.Sprintf("parameter %s has non-integer value %q", name, fields[2])}
	}
	if r.pendVals != nil {
		// Names outside the first block's schema are silently dropped.
		if i, ok := r.colIndex[name]; ok {
			r.pendVals[i] = v
		}
		return nil
	}
	r.pendPairs = append(r.pendPairs, paramVal{name: name, val: v})
	return nil
}

// finalize converts the pending block into a positional row. The column
// index is built exactly once, from the first block, and later blocks are
// not reconciled against it.
func (r *BlockReader) finalize() types.Row {
	if r.colIndex == nil {
		r.buildIndex()
	}
	out := *r.pendKey
	if r.pendVals != nil {
		out.Values = r.pendVals
	} else {
		vals := r.emptyValues()
		for _, pv := range r.pendPairs {
			if i, ok := r.colIndex[pv.name]; ok {
				vals[i] = pv.val
			}
		}
		out.Values = vals
	}
	r.pendPairs = nil
	r.pendVals = nil
	return out
}

func (r *BlockReader) buildIndex() {
	r.namesDone = true
	r.colIndex = make(map[string]int, len(r.paramNames))
	for _, n := range r.paramNames {
		if r.exclude.Excluded(n) {
			continue
		}
		if _, dup := r.colIndex[n]; dup {
			continue
		}
		r.colIndex[n] = len(r.retained)
		r.retained = append(r.retained, n)
	}
}

// emptyValues allocates a value slice prefilled with the missing sentinel,
// so parameters a block never mentions surface as absent downstream.
func (r *BlockReader) emptyValues() []int64 {
	vals := make([]int64, len(r.retained))
	for i := range vals {
		vals[i] = types.MissingValue
	}
	return vals
}
