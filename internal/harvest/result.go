package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Options struct {
	URLs    []string
	Headers map[string]string
	OutDir  string
}

// BatchResult is the JSON artifact one harvest pass writes to disk.
type BatchResult struct {
	HarvestedAt string   `json:"harvested_at"`
	Count       int      `json:"count"`
	Skipped     int      `json:"skipped"`
	Records     []Record `json:"records"`
}

// RunOnce runs a single harvest pass and writes the batch result as a JSON
// file under OutDir, returning the file path.
func (h *Harvester) RunOnce(ctx context.Context, opts Options) (string, BatchResult, error) {
	if len(opts.URLs) == 0 {
		return "", BatchResult{}, fmt.Errorf("missing URLs")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		opts.OutDir = "out"
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", BatchResult{}, err
	}

	records := h.Run(ctx, opts.URLs, opts.Headers)

	result := BatchResult{
		HarvestedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Count:       len(records),
		Skipped:     len(opts.URLs) - len(records),
		Records:     records,
	}

	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", result, fmt.Errorf("marshal batch result: %w", err)
	}

	outPath := filepath.Join(opts.OutDir, fmt.Sprintf("harvest-%d.json", time.Now().UTC().UnixNano()))
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		return "", result, fmt.Errorf("write batch result: %w", err)
	}

	return outPath, result, nil
}
