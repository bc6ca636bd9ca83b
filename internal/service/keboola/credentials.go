package keboola

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingCredentials 表示未配置 Storage URL 或 Token。
var ErrMissingCredentials = errors.New("keboola storage url or token is not configured")

// resolveCredentials 返回规范化后的 API 根地址与 Token，缺失时给出明确错误。
func resolveCredentials(cfg Config) (*url.URL, string, error) {
	rawURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	token := strings.TrimSpace(cfg.Token)
	if rawURL == "" || token == "" {
		return nil, "", ErrMissingCredentials
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid storage url %q: %w", rawURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, "", fmt.Errorf("invalid storage url %q: scheme must be http or https", rawURL)
	}
	if base.Host == "" {
		return nil, "", fmt.Errorf("invalid storage url %q: missing host", rawURL)
	}
	return base, token, nil
}
