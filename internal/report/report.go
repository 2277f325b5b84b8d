package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alias1177/StockSignals/internal/model"
)

// FileName is the report written into the output directory
const FileName = "signals.json"

// WriteJSON writes the report to dir/signals.json through a temporary file and returns the path
func WriteJSON(dir string, r *model.RunReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(dir, FileName)
	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move report into place: %w", err)
	}
	return path, nil
}

// ReadJSON loads a report written by WriteJSON
func ReadJSON(path string) (*model.RunReport, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r model.RunReport
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &r, nil
}

// Summary renders the short text brief used for alerts
func Summary(r *model.RunReport) string {
	s := r.Summary
	lines := []string{fmt.Sprintf("📊 Market: %s", r.Regime.State)}

	if len(s.StrongBuy) > 0 {
		lines = append(lines, "🟢🟢 STRONG BUY: "+strings.Join(s.StrongBuy, ", "))
	}
	if len(s.Buy) > 0 {
		lines = append(lines, "🟢 BUY: "+strings.Join(s.Buy, ", "))
	}
	if len(s.Sell) > 0 {
		lines = append(lines, "🔴 SELL: "+strings.Join(s.Sell, ", "))
	}
	if len(s.StrongSell) > 0 {
		lines = append(lines, "🔴🔴 STRONG SELL: "+strings.Join(s.StrongSell, ", "))
	}

	if len(s.StrongBuy)+len(s.Buy)+len(s.Sell)+len(s.StrongSell) == 0 {
		lines = append(lines, "No actionable signals")
	}

	for _, res := range r.Results {
		if o := res.Option; o != nil {
			lines = append(lines, fmt.Sprintf("📈 %s %s $%s exp %s (Δ %.2f, ~$%.2f)",
				o.Ticker, o.Type, formatStrike(o.Strike), o.Expiry.Format("Jan 2 2006"), o.Delta, o.EstimatedPremium))
		}
	}

	if len(r.Failures) > 0 {
		lines = append(lines, fmt.Sprintf("⚠️ %d of %d tickers without data", len(r.Failures), r.Coverage.Total))
	}

	return strings.Join(lines, "\n")
}

func formatStrike(k float64) string {
	if k == float64(int64(k)) {
		return fmt.Sprintf("%d", int64(k))
	}
	return fmt.Sprintf("%.1f", k)
}
