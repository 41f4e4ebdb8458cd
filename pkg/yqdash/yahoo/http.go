package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// StatusError is returned when Yahoo answers with a non-2xx status.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("yahoo: %s: %d %s", e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("yahoo: %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// apiError is the error object Yahoo embeds in options and timeseries bodies.
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// getJSON issues a GET against the configured base URL and decodes the body
// into out. Premium requests carry the ticker credentials as basic auth.
func (t *Ticker) getJSON(ctx context.Context, path string, q url.Values, auth bool, out any) error {
	u := t.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	if auth {
		req.SetBasicAuth(t.opts.Username, t.opts.Password)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{URL: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func symbolPath(prefix, sym string) string {
	return prefix + url.PathEscape(sym)
}
