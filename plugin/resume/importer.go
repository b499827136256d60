package resume

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// importableMimeTypes are the source document formats the importer accepts.
var importableMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/rtf",
	"text/plain",
	"text/rtf",
}

// ImporterConfig holds the resume import configuration.
type ImporterConfig struct {
	// TikaServerURL is the URL of a running Tika server (e.g., http://localhost:9998).
	TikaServerURL string
	// TikaJarPath is the path to tika-app.jar, used when no server is reachable.
	TikaJarPath string
	// JavaPath is the path to the java executable for jar mode.
	JavaPath string
	// Timeout is the HTTP timeout for Tika server requests.
	Timeout time.Duration
}

// DefaultImporterConfig returns the default import configuration.
func DefaultImporterConfig() *ImporterConfig {
	return &ImporterConfig{
		TikaServerURL: "http://localhost:9998",
		JavaPath:      "java",
		Timeout:       30 * time.Second,
	}
}

// ImporterConfigFromEnv creates import config from GOJO_TIKA_* environment
// variables.
func ImporterConfigFromEnv() *ImporterConfig {
	config := DefaultImporterConfig()

	if url := os.Getenv("GOJO_TIKA_URL"); url != "" {
		config.TikaServerURL = url
	}
	if path := os.Getenv("GOJO_TIKA_JAR"); path != "" {
		config.TikaJarPath = path
	}
	if path := os.Getenv("GOJO_JAVA_PATH"); path != "" {
		config.JavaPath = path
	}
	if timeout := os.Getenv("GOJO_TIKA_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Timeout = d
		}
	}

	return config
}

// Importer converts a source resume document (PDF, Word, plain text) into the
// plain-text asset the chat pipeline reads. PDF and Word sources go through
// Apache Tika; plain text is taken as-is.
type Importer struct {
	config     *ImporterConfig
	httpClient *http.Client
}

// NewImporter creates a resume importer.
func NewImporter(config *ImporterConfig) *Importer {
	if config == nil {
		config = DefaultImporterConfig()
	}
	return &Importer{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Import reads the source document, extracts its text and writes the
// normalized result to destPath, where the loader will pick it up.
func (i *Importer) Import(ctx context.Context, sourcePath, destPath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return errors.Wrap(err, "failed to read source document")
	}

	contentType := detectContentType(sourcePath, data)
	if !isImportable(contentType) {
		return errors.Errorf("unsupported resume format: %s", contentType)
	}

	var text string
	if strings.HasPrefix(contentType, "text/plain") {
		text = string(data)
	} else {
		text, err = i.extract(ctx, data, contentType)
		if err != nil {
			return err
		}
	}

	text = normalizeImportedText(text)
	if text == "" {
		return errors.New("extraction produced no text")
	}

	if err := os.WriteFile(destPath, []byte(text), 0644); err != nil {
		return errors.Wrap(err, "failed to write resume asset")
	}
	slog.Info("resume imported", "source", sourcePath, "dest", destPath, "bytes", len(text))
	return nil
}

// extract runs the document through Tika, preferring a server and falling back
// to jar mode.
func (i *Importer) extract(ctx context.Context, data []byte, contentType string) (string, error) {
	if i.config.TikaServerURL != "" {
		text, err := i.extractFromServer(ctx, data, contentType)
		if err == nil {
			return text, nil
		}
		slog.Warn("Tika server extraction failed, trying jar mode", "error", err)
	}

	if i.config.TikaJarPath != "" {
		return i.extractWithJar(ctx, data)
	}
	return "", errors.New("no Tika server or jar available")
}

func (i *Importer) extractFromServer(ctx context.Context, data []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		i.config.TikaServerURL+"/tika",
		bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/plain")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "tika server request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("tika server returned status %d: %s", resp.StatusCode, string(body))
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response")
	}
	return string(text), nil
}

func (i *Importer) extractWithJar(ctx context.Context, data []byte) (string, error) {
	inputFile, err := os.CreateTemp("", "resume_import_*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	defer func() {
		inputFile.Close()
		os.Remove(inputFile.Name())
	}()

	if _, err := inputFile.Write(data); err != nil {
		return "", errors.Wrap(err, "failed to write temp file")
	}

	cmd := exec.CommandContext(ctx, i.config.JavaPath,
		"-jar", i.config.TikaJarPath,
		"-t",
		inputFile.Name(),
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Warn("tika-app.jar failed", "error", err, "stderr", stderr.String())
		return "", errors.Wrap(err, "tika-app.jar failed")
	}
	return stdout.String(), nil
}

func isImportable(contentType string) bool {
	base := contentType
	if idx := strings.Index(base, ";"); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(base)
	for _, supported := range importableMimeTypes {
		if strings.EqualFold(base, supported) {
			return true
		}
	}
	return false
}

func detectContentType(filePath string, data []byte) string {
	// Extension first; PDF sniffing misreads some generator output.
	ext := strings.ToLower(filepath.Ext(filePath))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// normalizeImportedText cleans up extractor output: CRLF endings, trailing
// space and runs of blank lines that PDF extraction tends to produce.
func normalizeImportedText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}
	joined := strings.TrimSpace(strings.Join(out, "\n"))
	if joined == "" {
		return ""
	}
	return joined + "\n"
}
