// Package fixtures downloads execution-spec-tests release archives and
// discovers benchmark-worthy fixture files inside them.
package fixtures

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// SourceConfig carries the release endpoints and the fallback version used
// when the latest release cannot be resolved. All values come from
// internal/config so tests can point them at local servers.
type SourceConfig struct {
	ReleasesAPI     string
	ReleaseURL      string
	FallbackVersion string
}

// Source fetches fixture archives from execution-spec-tests releases.
type Source struct {
	log    logrus.FieldLogger
	client *http.Client
	cfg    SourceConfig
}

// NewSource creates a fixture source.
func NewSource(log logrus.FieldLogger, cfg SourceConfig) *Source {
	return &Source{
		log:    log.WithField("component", "fixtures"),
		client: &http.Client{},
		cfg:    cfg,
	}
}

// ResolveVersion resolves "latest" to a concrete release tag via the
// releases API. Any other version string is returned unchanged. On lookup
// failure the configured fallback version is returned.
func (s *Source) ResolveVersion(version string) string {
	if version != "latest" {
		return version
	}

	resp, err := s.client.Get(s.cfg.ReleasesAPI + "/latest")
	if err != nil {
		s.log.WithError(err).Warn("Could not fetch latest release, using fallback version")
		return s.cfg.FallbackVersion
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.WithField("status", resp.Status).Warn("Release lookup failed, using fallback version")
		return s.cfg.FallbackVersion
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil || release.TagName == "" {
		s.log.WithError(err).Warn("Could not parse release listing, using fallback version")
		return s.cfg.FallbackVersion
	}

	return release.TagName
}

// archiveNames returns the candidate archive filenames tried in order for
// a release.
func archiveNames(version string) []string {
	return []string{
		"fixtures_develop.tar.gz",
		"fixtures.tar.gz",
		fmt.Sprintf("fixtures_%s.tar.gz", version),
	}
}

// Download resolves version, tries each candidate archive name in order
// and extracts the first one that downloads successfully. It returns the
// extraction directory (<outputDir>/fixtures). If every candidate fails
// the error signals that no fixtures are available; callers fall back to
// sample generation.
func (s *Source) Download(version, outputDir string) (string, error) {
	version = s.ResolveVersion(version)

	fixturesDir := filepath.Join(outputDir, "fixtures")
	if err := os.MkdirAll(fixturesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create fixtures directory: %w", err)
	}

	for _, name := range archiveNames(version) {
		url := fmt.Sprintf("%s/%s/%s", s.cfg.ReleaseURL, version, name)
		s.log.WithField("url", url).Info("Trying to download fixture archive")

		if err := s.fetchAndExtract(url, fixturesDir); err != nil {
			s.log.WithError(err).WithField("archive", name).Warn("Could not download archive")
			continue
		}

		s.log.WithField("archive", name).Info("Downloaded and extracted fixtures")
		return fixturesDir, nil
	}

	return "", fmt.Errorf("no fixture archive available for version %s", version)
}

// fetchAndExtract downloads a tar.gz archive to a temporary file and
// unpacks it into destDir.
func (s *Source) fetchAndExtract(url, destDir string) error {
	resp, err := s.client.Get(url)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "fixtures-*.tar.gz")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save archive: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to rewind archive: %w", err)
	}
	defer tmp.Close()

	return extractTarGz(tmp, destDir)
}

// extractTarGz unpacks a gzip-compressed tar stream into destDir. Entries
// escaping destDir are rejected.
func extractTarGz(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
			}
			f.Close()
		default:
			// Symlinks and special files are not expected in fixture
			// archives; skip them.
		}
	}
}
