package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/utils"
)

const apiBase = "https://sheets.googleapis.com/v4/spreadsheets"

// sheetNameCacheTTL bounds how long an index-to-name resolution is reused
// before the metadata endpoint is consulted again.
const sheetNameCacheTTL = 10 * time.Minute

var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExtractSheetID pulls the spreadsheet id out of a full sheet URL.
func ExtractSheetID(sheetURL string) string {
	m := sheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// Header is the first row of the attendance sheet, columns A through L.
var Header = []string{
	"타임스탬프", "한국시간", "이름", "이메일", "부서", "직급",
	"직책", "사번", "액션", "도메인ID", "출처", "이미지URL",
}

// Client performs raw spreadsheet operations: name resolution, header ensure,
// row append and range reads.
type Client struct {
	cfg     config.AppConfig
	tokens  *TokenSource
	hc      *http.Client
	sheetID string
}

// NewClient builds a sheets client. Returns an error when the sheet URL is
// missing or malformed since nothing downstream can work without the id.
func NewClient(cfg config.AppConfig) (*Client, error) {
	sheetID := ExtractSheetID(cfg.SheetURL)
	if sheetID == "" {
		return nil, fmt.Errorf("cannot extract spreadsheet id from sheet URL %q", cfg.SheetURL)
	}
	return &Client{
		cfg:     cfg,
		tokens:  NewTokenSource(cfg),
		hc:      &http.Client{Timeout: 15 * time.Second},
		sheetID: sheetID,
	}, nil
}

// SheetID exposes the resolved spreadsheet id.
func (c *Client) SheetID() string { return c.sheetID }

// ResolveSheetName maps the configured worksheet selector to a sheet name.
// Numeric selectors are treated as an index into the spreadsheet's sheet list
// and resolved via the metadata endpoint; resolutions are cached briefly to
// avoid a metadata call per write.
func (c *Client) ResolveSheetName(ctx context.Context) (string, error) {
	worksheet := c.cfg.SheetWorksheet
	if worksheet == "" {
		worksheet = "0"
	}

	idx, err := strconv.Atoi(worksheet)
	if err != nil {
		// non-numeric selector is the sheet name itself
		return worksheet, nil
	}

	cacheKey := "sheets:name:" + c.sheetID + ":" + worksheet
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		return string(b), nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?fields=sheets.properties", apiBase, c.sheetID), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("sheet metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		utils.Sugar.Warnf("sheet metadata lookup failed (%d), using default name: %s", resp.StatusCode, string(body))
		return "Sheet1", nil
	}

	var meta struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return "", fmt.Errorf("sheet metadata decode: %w", err)
	}

	name := "Sheet1"
	if idx >= 0 && idx < len(meta.Sheets) {
		name = meta.Sheets[idx].Properties.Title
	} else {
		utils.Sugar.Warnf("worksheet index %d out of range (%d sheets), using default name", idx, len(meta.Sheets))
	}

	utils.CacheSetBytes(cacheKey, []byte(name), sheetNameCacheTTL)
	return name, nil
}

// EnsureHeader writes the Korean header row when the first row is missing or
// not ours. Failures are logged and swallowed: a missing header never blocks
// an attendance write.
func (c *Client) EnsureHeader(ctx context.Context, sheetName string) {
	values, err := c.ReadRange(ctx, sheetName+"!A1:L1")
	if err != nil {
		utils.Sugar.Warnf("header check failed: %v", err)
		return
	}
	if len(values) > 0 && len(values[0]) > 0 && values[0][0] == Header[0] {
		return
	}

	row := make([]any, len(Header))
	for i, h := range Header {
		row[i] = h
	}
	if err := c.PutRange(ctx, sheetName+"!A1:L1", [][]any{row}); err != nil {
		utils.Sugar.Warnf("header write failed: %v", err)
	}
}

// AppendRow appends a single row after the last non-empty row of the sheet.
func (c *Client) AppendRow(ctx context.Context, sheetName string, row []any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=RAW",
		apiBase, c.sheetID, url.PathEscape(sheetName))

	payload, err := json.Marshal(map[string]any{"values": [][]any{row}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("sheet append failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sheet append returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// ReadRange fetches an A1-notation range as a string matrix.
func (c *Client) ReadRange(ctx context.Context, a1Range string) ([][]string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s", apiBase, c.sheetID, url.PathEscape(a1Range))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet read failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet read returned %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Values [][]string `json:"values"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("sheet read decode: %w", err)
	}
	return out.Values, nil
}

// PutRange overwrites an A1-notation range with the given values.
func (c *Client) PutRange(ctx context.Context, a1Range string, values [][]any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW",
		apiBase, c.sheetID, url.PathEscape(a1Range))

	payload, err := json.Marshal(map[string]any{"values": values})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("sheet put failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sheet put returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// AddSheet creates a new worksheet inside the spreadsheet. Used when saving a
// weekly summary for the first time; an "already exists" error is fine for
// the caller to ignore.
func (c *Client) AddSheet(ctx context.Context, title string) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"requests": []map[string]any{
			{"addSheet": map[string]any{"properties": map[string]any{"title": title}}},
		},
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s:batchUpdate", apiBase, c.sheetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("add sheet failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("add sheet returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
