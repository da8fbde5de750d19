// Package cache persists contour polygons as plain text.
//
// Every polygon is written on its own line as a sequence of "x,y;" tokens:
//
//	1,2;1,3;3,3;3,1;
//
// There is no header, count or checksum. Coordinates are always integers.
package cache

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/tilemarch/internal/utils"
)

// FormatError reports a token that could not be parsed.
type FormatError struct {
	Line  int
	Token string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cache line %d: bad token %q: %v", e.Line, e.Token, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Encode writes one line per polygon.
func Encode(w io.Writer, polygons [][]utils.IPoint) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for _, poly := range polygons {
		for _, p := range poly {
			buf = buf[:0]
			buf = strconv.AppendInt(buf, int64(p.X), 10)
			buf = append(buf, ',')
			buf = strconv.AppendInt(buf, int64(p.Y), 10)
			buf = append(buf, ';')
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("write cache: %w", err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write cache: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	return nil
}

// Decode parses every non-empty line into a polygon. Lines that contain only
// whitespace or separators are skipped, so no empty polygon is returned.
func Decode(r io.Reader) ([][]utils.IPoint, error) {
	var polygons [][]utils.IPoint

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		poly, err := decodeLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		if len(poly) == 0 {
			continue
		}
		polygons = append(polygons, poly)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	return polygons, nil
}

func decodeLine(line string, lineNo int) ([]utils.IPoint, error) {
	tokens := strings.Split(line, ";")
	poly := make([]utils.IPoint, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		xs, ys, ok := strings.Cut(tok, ",")
		if !ok {
			return nil, &FormatError{Line: lineNo, Token: tok, Err: errMissingComma}
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, &FormatError{Line: lineNo, Token: tok, Err: err}
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, &FormatError{Line: lineNo, Token: tok, Err: err}
		}
		poly = append(poly, utils.IPoint{X: x, Y: y})
	}
	return poly, nil
}
