// Package parser reads the block-structured SHIPS diagnostics text format
// and turns it into storm observation rows.
//
// The raw files are line-oriented ASCII with fields separated by runs of
// whitespace. Each line ends with a row name: HEAD opens a storm block,
// LAST terminates it, and anything else is a diagnostic parameter code.
// Some lines carry a trailing all-digit continuation index after the name,
// which is stripped during row-name resolution.
//
// # Basic Usage
//
//	br := parser.NewBlockReader(f, types.DefaultExclusion(), logger)
//	for br.Next() {
//	    row := br.Row()
//	    // store row
//	}
//	if err := br.Err(); err != nil {
//	    return err
//	}
//
// BlockReader is a lazy, finite, non-restartable row stream in the
// bufio.Scanner idiom: Next advances, Row returns the finalized
// observation, Err reports the first fatal error after exhaustion.
//
// # Timestamps
//
// The block header carries an ambiguous 2-digit year. The reader always
// takes the 4-digit year from the ATCF identifier suffix and only uses the
// month and day from the header date field; a disagreement between the two
// year sources is logged and ingestion continues.
//
// # Error Handling
//
// Structural problems are fatal: input that does not start with a HEAD
// line, header dates that do not compose into a valid YYYYMMDDHH timestamp,
// and parameter lines with too few fields all stop the stream with a
// *FormatError. Skipping past them could desynchronize a block boundary
// and corrupt every following row. Row-local anomalies, such as a
// parameter name the first block never declared, are silently dropped.
package parser
