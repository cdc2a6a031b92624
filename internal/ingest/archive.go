package ingest

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ExtractDATLines reads a yearly archive, which contains one weekly ZIP per
// publication week, and returns every line of every DAT file inside those
// weekly ZIPs.
func ExtractDATLines(zipPath string, logger *logrus.Logger) ([]string, error) {
	outer, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer outer.Close()

	var lines []string
	for _, entry := range outer.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".zip") {
			continue
		}
		weekly, err := readWeeklyZip(entry)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"archive": zipPath,
				"entry":   entry.Name,
				"error":   err,
			}).Warn("Skipping unreadable weekly archive")
			continue
		}
		lines = append(lines, weekly...)
	}
	return lines, nil
}

func readWeeklyZip(entry *zip.File) ([]string, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	inner, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, file := range inner.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".dat") {
			continue
		}
		datLines, err := readDATFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
		}
		lines = append(lines, datLines...)
	}
	return lines, nil
}

func readDATFile(file *zip.File) ([]string, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var lines []string
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
