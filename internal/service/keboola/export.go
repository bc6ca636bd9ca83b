package keboola

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/z-fairytale/backend/internal/model/table"
)

const (
	defaultPollInterval = time.Second
	maxPollInterval     = 10 * time.Second
)

var (
	// ErrExportFailed 表示导出任务以 error 状态结束。
	ErrExportFailed = errors.New("table export job failed")
	// ErrUnsupportedSlice marks a sliced export whose slices are not plain http(s) URLs.
	ErrUnsupportedSlice = errors.New("sliced export entry is not reachable over http")
)

// storageJob 异步任务状态
type storageJob struct {
	ID      json.Number     `json:"id"`
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
	Error   json.RawMessage `json:"error"`
}

type exportResults struct {
	File struct {
		ID json.Number `json:"id"`
	} `json:"file"`
}

// exportFile is the file detail of a finished export.
type exportFile struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	URL      string      `json:"url"`
	IsSliced bool        `json:"isSliced"`
}

type sliceManifest struct {
	Entries []struct {
		URL string `json:"url"`
	} `json:"entries"`
}

// ReadTable exports the whole table through an async export job and downloads the result.
func (c *Client) ReadTable(ctx context.Context, tableID string) (*table.Table, error) {
	jobID, err := c.startExport(ctx, tableID)
	if err != nil {
		return nil, err
	}

	fileID, err := c.waitForExport(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("export table %s: %w", tableID, err)
	}

	file, err := c.fileDetail(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var t *table.Table
	if file.IsSliced {
		t, err = c.downloadSliced(ctx, tableID, file)
	} else {
		t, err = c.downloadFile(ctx, file.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("download table %s: %w", tableID, err)
	}

	c.logger.Debug("table read",
		zap.String("table", tableID),
		zap.String("file_id", fileID),
		zap.Bool("sliced", file.IsSliced),
		zap.Int("rows", t.Len()),
	)
	return t, nil
}

func (c *Client) startExport(ctx context.Context, tableID string) (string, error) {
	form := url.Values{}
	form.Set("format", "rfc")
	form.Set("gzip", "0")

	req, err := c.newRequest(ctx, http.MethodPost, tablePath(tableID, "export-async"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var job storageJob
	if err := c.doJSON(req, &job); err != nil {
		return "", err
	}
	if job.ID == "" {
		return "", fmt.Errorf("export table %s: response carries no job id", tableID)
	}
	return job.ID.String(), nil
}

// waitForExport 轮询任务直到结束，返回导出文件的ID
func (c *Client) waitForExport(ctx context.Context, jobID string) (string, error) {
	interval := c.pollInterval
	for {
		req, err := c.newRequest(ctx, http.MethodGet, "/v2/storage/jobs/"+url.PathEscape(jobID), nil)
		if err != nil {
			return "", err
		}
		var job storageJob
		if err := c.doJSON(req, &job); err != nil {
			return "", err
		}

		switch job.Status {
		case "success":
			var results exportResults
			if err := json.Unmarshal(job.Results, &results); err != nil {
				return "", fmt.Errorf("decode job %s results: %w", jobID, err)
			}
			if results.File.ID == "" {
				return "", fmt.Errorf("job %s finished without a file", jobID)
			}
			return results.File.ID.String(), nil
		case "error":
			return "", fmt.Errorf("%w: job %s: %s", ErrExportFailed, jobID, jobErrorMessage(job.Error))
		}

		c.logger.Debug("waiting for export job", zap.String("job_id", jobID), zap.String("status", job.Status))
		if err := sleepContext(ctx, interval); err != nil {
			return "", err
		}
		interval = min(interval*2, maxPollInterval)
	}
}

func (c *Client) fileDetail(ctx context.Context, fileID string) (exportFile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v2/storage/files/"+url.PathEscape(fileID)+"?federationToken=1", nil)
	if err != nil {
		return exportFile{}, err
	}
	var file exportFile
	if err := c.doJSON(req, &file); err != nil {
		return exportFile{}, err
	}
	if file.URL == "" {
		return exportFile{}, fmt.Errorf("file %s has no download url", fileID)
	}
	return file, nil
}

// downloadFile reads a single header-led CSV file.
func (c *Client) downloadFile(ctx context.Context, rawURL string) (*table.Table, error) {
	body, err := c.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r, err := decompress(body)
	if err != nil {
		return nil, err
	}
	return table.ReadCSV(r)
}

// downloadSliced 下载分片导出：分片不带表头，列名取自表详情
func (c *Client) downloadSliced(ctx context.Context, tableID string, file exportFile) (*table.Table, error) {
	manifestBody, err := c.fetch(ctx, file.URL)
	if err != nil {
		return nil, err
	}
	var manifest sliceManifest
	err = json.NewDecoder(manifestBody).Decode(&manifest)
	manifestBody.Close()
	if err != nil {
		return nil, fmt.Errorf("decode slice manifest: %w", err)
	}

	columns, err := c.tableColumns(ctx, tableID)
	if err != nil {
		return nil, err
	}

	t := table.New(columns...)
	for _, entry := range manifest.Entries {
		if err := c.appendSlice(ctx, t, entry.URL); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (c *Client) appendSlice(ctx context.Context, t *table.Table, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse slice url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s", ErrUnsupportedSlice, u.Scheme)
	}

	body, err := c.fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()

	r, err := decompress(body)
	if err != nil {
		return err
	}
	return t.AppendCSV(r)
}

func (c *Client) tableColumns(ctx context.Context, tableID string) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, tablePath(tableID), nil)
	if err != nil {
		return nil, err
	}
	var detail struct {
		Columns []string `json:"columns"`
	}
	if err := c.doJSON(req, &detail); err != nil {
		return nil, err
	}
	return detail.Columns, nil
}

// fetch downloads a file URL. File URLs are pre-signed, so the storage token is not sent.
func (c *Client) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) doJSON(req *http.Request, v any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// decompress transparently unwraps gzip content.
func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		return br, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	return zr, nil
}

func jobErrorMessage(raw json.RawMessage) string {
	var jobErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &jobErr); err != nil || jobErr.Message == "" {
		return "unknown error"
	}
	if jobErr.Code != "" {
		return jobErr.Message + " (" + jobErr.Code + ")"
	}
	return jobErr.Message
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
