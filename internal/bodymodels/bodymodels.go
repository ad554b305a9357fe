package bodymodels

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
)

// Load reads the body-model knowledge base, one model name per line, skipping
// blanks. A missing file is not an error: the extractor simply runs with
// reduced context for the body_model field.
func Load(path string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("bodymodels.file_missing", "path", path)
		} else {
			logger.Error("bodymodels.load_failed", "path", path, "error", err)
		}
		return nil
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("bodymodels.close_failed", "path", path, "error", cerr)
		}
	}()

	var models []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			models = append(models, line)
		}
	}
	if err := sc.Err(); err != nil {
		logger.Error("bodymodels.scan_failed", "path", path, "error", err)
	}
	logger.Info("bodymodels.loaded", "path", path, "count", len(models))
	return models
}

// ExactMatch reports whether the candidate text matches a known model
// case-insensitively. Used to flag records whose body_model came back
// verbatim from the knowledge base.
func ExactMatch(models []string, candidate string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return "", false
	}
	for _, m := range models {
		if strings.ToLower(m) == c {
			return m, true
		}
	}
	return "", false
}
