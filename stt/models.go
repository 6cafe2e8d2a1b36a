package stt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// modelHost serves the ggml weight files. Variable so tests can point it
// at a local server.
var modelHost = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// modelCatalog maps model sizes to their approximate download sizes.
var modelCatalog = map[string]int64{
	"tiny":     75 * 1024 * 1024,
	"base":     142 * 1024 * 1024,
	"small":    466 * 1024 * 1024,
	"medium":   1500 * 1024 * 1024,
	"large-v2": 3000 * 1024 * 1024,
}

// modelOrder lists the sizes smallest first for display.
var modelOrder = []string{"tiny", "base", "small", "medium", "large-v2"}

// ModelSizes returns the supported model sizes, smallest first.
func ModelSizes() []string {
	sizes := make([]string, len(modelOrder))
	copy(sizes, modelOrder)
	return sizes
}

// ValidSize reports whether size names a supported model.
func ValidSize(size string) bool {
	_, ok := modelCatalog[size]
	return ok
}

// ModelBytes returns the approximate download size of a model, 0 when the
// size is unknown.
func ModelBytes(size string) int64 {
	return modelCatalog[size]
}

// ModelPath returns the weights path for a model size under dir.
func ModelPath(dir, size string) string {
	return filepath.Join(dir, fmt.Sprintf("ggml-%s.bin", size))
}

// ModelInstalled reports whether the weights for a model size exist.
func ModelInstalled(dir, size string) bool {
	info, err := os.Stat(ModelPath(dir, size))
	return err == nil && !info.IsDir()
}

// DownloadModel fetches the ggml weights for a model size into dir. The
// file appears under its final name only after a complete download. The
// progress callback, when non-nil, receives whole percentages.
func DownloadModel(ctx context.Context, dir, size string, progress func(percent int)) error {
	if !ValidSize(size) {
		return fmt.Errorf("invalid model size: %s", size)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	url := fmt.Sprintf("%s/ggml-%s.bin", modelHost, size)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http status: %d", resp.StatusCode)
	}

	expected := resp.ContentLength
	if expected <= 0 {
		expected = ModelBytes(size)
	}

	final := ModelPath(dir, size)
	tmpPath := final + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // no-op once renamed
	}()

	var downloaded int64
	buf := make([]byte, 32*1024)
	lastPct := 0
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write file: %w", werr)
			}
			downloaded += int64(n)
			if expected > 0 && progress != nil {
				pct := int(downloaded * 100 / expected)
				if pct > lastPct {
					lastPct = pct
					progress(pct)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	if progress != nil {
		progress(100)
	}
	return nil
}
