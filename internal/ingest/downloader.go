package ingest

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Downloader fetches yearly sale archives from the Valuer General bulk
// download site. Archives already on disk are not fetched again.
type Downloader struct {
	urlBase     string
	downloadDir string
	client      *http.Client
	logger      *logrus.Logger
}

func NewDownloader(urlBase, downloadDir string, logger *logrus.Logger) *Downloader {
	return &Downloader{
		urlBase:     urlBase,
		downloadDir: downloadDir,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// DownloadYears fetches the yearly archive for every year in [startYear,
// endYear] and returns the paths of the archives available on disk. A year
// that fails to download is logged and skipped.
func (d *Downloader) DownloadYears(startYear, endYear int) ([]string, error) {
	if err := os.MkdirAll(d.downloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	var paths []string
	for year := startYear; year <= endYear; year++ {
		filename := fmt.Sprintf("%d.zip", year)
		path := filepath.Join(d.downloadDir, filename)

		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
			continue
		}

		if err := d.downloadFile(d.urlBase+filename, path); err != nil {
			d.logger.WithFields(logrus.Fields{
				"year":  year,
				"error": err,
			}).Error("Failed to download yearly archive")
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (d *Downloader) downloadFile(url, path string) error {
	d.logger.WithField("url", url).Info("Downloading archive")

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
