// Package resultsink writes the line-based output stream of spec.md §6:
// one "<ParamNo>:<explicit-parametrisation>:<robustness?>:<witness?>"
// line per accepted parametrisation, empty fields elided, ordered by
// ascending ParamNo within a batch and by batch order across batches.
package resultsink

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Line is one accepted parametrisation's result record.
type Line struct {
	ParamNo    int
	Explicit   string
	Robustness float64
	HasRobust  bool
	Witness    string
	HasWitness bool
}

// Sink writes Lines in the required format, buffering writes to the
// underlying writer.
type Sink struct {
	w *bufio.Writer
}

// New wraps w for writing.
func New(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriter(w)}
}

// Write emits one line, within-batch caller responsible for ascending
// ParamNo order (spec.md §6's ordering guarantee belongs to C11).
func (s *Sink) Write(l Line) error {
	fields := []string{strconv.Itoa(l.ParamNo), l.Explicit}
	if l.HasRobust {
		fields = append(fields, strconv.FormatFloat(l.Robustness, 'f', -1, 64))
	} else {
		fields = append(fields, "")
	}
	if l.HasWitness {
		fields = append(fields, l.Witness)
	} else {
		fields = append(fields, "")
	}
	if _, err := fmt.Fprintln(s.w, strings.Join(fields, ":")); err != nil {
		return err
	}
	return nil
}

// Flush pushes any buffered output to the underlying writer.
func (s *Sink) Flush() error { return s.w.Flush() }
