package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads a dataset from a plain-text column file. Rows hold 2 to 4
// whitespace-separated columns: q, R, dR, dq. Lines starting with '#', '%'
// or '!' are comments; blank lines are skipped. Every data row must have the
// same column count.
func Load(filename string) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return LoadReader(f, name)
}

// LoadReader parses column data from a reader.
func LoadReader(r io.Reader, name string) (*Dataset, error) {
	var q, rr, dr, dq []float64
	cols := 0
	lineNo := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isComment(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 4 {
			return nil, fmt.Errorf("%w: line %d has %d columns, want 2-4", ErrBadData, lineNo, len(fields))
		}
		if cols == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("%w: line %d has %d columns, earlier rows had %d", ErrBadData, lineNo, len(fields), cols)
		}

		vals := make([]float64, len(fields))
		for i, fstr := range fields {
			v, err := strconv.ParseFloat(fstr, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %v", ErrBadData, lineNo, i+1, err)
			}
			vals[i] = v
		}

		q = append(q, vals[0])
		rr = append(rr, vals[1])
		if cols >= 3 {
			dr = append(dr, vals[2])
		}
		if cols == 4 {
			dq = append(dq, vals[3])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	return New(name, q, rr, dr, dq)
}

func isComment(line string) bool {
	switch line[0] {
	case '#', '%', '!':
		return true
	}
	return false
}

// Save writes the dataset back out as column text with a '#' header line.
func Save(d *Dataset, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# q R dR dq")
	dr := d.Uncertainties()
	for i := range d.Q {
		dqv := 0.0
		if d.DQ != nil {
			dqv = d.DQ[i]
		}
		fmt.Fprintf(w, "%.8g %.8g %.8g %.8g\n", d.Q[i], d.R[i], dr[i], dqv)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	return nil
}
