package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
)

// CSVProvider reads <dir>/<SYMBOL>.csv files with a date,open,high,low,close[,volume] header
type CSVProvider struct {
	Dir string
}

// NewCSVProvider creates a provider over dir
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{Dir: dir}
}

// Bars implements Provider
func (p *CSVProvider) Bars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.Dir, strings.ToUpper(symbol)+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Window(bars, from, to), nil
}

// ReadCSV parses a bar file and returns the bars oldest first
func ReadCSV(r io.Reader) ([]model.PriceBar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
	}
	volCol, hasVolume := cols["volume"]

	var bars []model.PriceBar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := time.Parse(time.DateOnly, rec[cols["date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var b model.PriceBar
		b.Time = ts
		for name, dst := range map[string]*float64{"open": &b.Open, "high": &b.High, "low": &b.Low, "close": &b.Close} {
			v, err := strconv.ParseFloat(rec[cols[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d %s: %w", line, name, err)
			}
			*dst = v
		}
		if hasVolume && rec[volCol] != "" {
			v, err := strconv.ParseFloat(rec[volCol], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d volume: %w", line, err)
			}
			b.Volume = int64(v)
		}
		bars = append(bars, b)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})
	return bars, nil
}

// WriteCSV writes bars in the format ReadCSV accepts
func WriteCSV(w io.Writer, bars []model.PriceBar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			b.Time.Format(time.DateOnly),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
