package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/config"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/output"
)

// asConfigExit maps pre-scan errors onto the configuration exit code.
func asConfigExit(err error) error {
	var ce *config.ConfigurationError
	if errors.As(err, &ce) {
		return &ExitError{Code: ExitConfig, Message: ce.Error()}
	}
	return &ExitError{Code: ExitConfig, Message: err.Error()}
}

// loadReport reads a previously generated JSON report.
func loadReport(path string) (model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Report{}, err
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return model.Report{}, fmt.Errorf("parse report json: %w", err)
	}
	return report, nil
}

// writeReport renders the report to the given path, or to fallback when the
// path is empty. It returns the file path actually written, if any.
func writeReport(report model.Report, format, path string, fallback io.Writer) (string, error) {
	if path == "" {
		return "", output.Write(report, format, fallback)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := output.Write(report, format, f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
