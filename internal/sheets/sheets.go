// Package sheets fetches the active coupon list from a Google Sheets
// spreadsheet using the values API. It implements registry.Source.
package sheets

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2/google"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	readonlyScope  = "https://www.googleapis.com/auth/spreadsheets.readonly"
)

// Client reads coupon codes from one spreadsheet column, located by sheet
// GID and column header name rather than a fixed A1 range, so the sheet can
// be reordered without breaking the job.
type Client struct {
	spreadsheetID string
	gid           int
	column        string
	http          *retryablehttp.Client
	baseURL       string
}

// NewClient builds a client authenticated with a service account
// credentials file.
func NewClient(ctx context.Context, credentialsFile, spreadsheetID string, gid int, column string) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheets credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, readonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheets credentials: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 3
	retryClient.HTTPClient = conf.Client(ctx)

	return &Client{
		spreadsheetID: spreadsheetID,
		gid:           gid,
		column:        column,
		http:          retryClient,
		baseURL:       defaultBaseURL,
	}, nil
}

// FetchCodes fetches the coupon column values, skipping the header row and
// blank cells. Satisfies registry.Source.
func (c *Client) FetchCodes(ctx context.Context) ([]string, error) {
	title, err := c.sheetTitleByGID(ctx)
	if err != nil {
		return nil, err
	}

	columnLetter, err := c.columnLetterByHeader(ctx, title)
	if err != nil {
		return nil, err
	}

	// Start at row 2 to skip the header.
	rangespec := fmt.Sprintf("'%s'!%s2:%s", title, columnLetter, columnLetter)
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.spreadsheetID, url.PathEscape(rangespec)))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch values from range %s: %w", rangespec, err)
	}

	var codes []string
	for _, row := range gjson.GetBytes(body, "values").Array() {
		value := strings.TrimSpace(row.Get("0").String())
		if value != "" {
			codes = append(codes, value)
		}
	}
	return codes, nil
}

// sheetTitleByGID resolves the sheet title for the configured GID from the
// spreadsheet metadata.
func (c *Client) sheetTitleByGID(ctx context.Context) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s?fields=sheets.properties", c.baseURL, c.spreadsheetID))
	if err != nil {
		return "", fmt.Errorf("failed to fetch spreadsheet metadata: %w", err)
	}

	for _, sheet := range gjson.GetBytes(body, "sheets").Array() {
		props := sheet.Get("properties")
		if props.Get("sheetId").Int() == int64(c.gid) {
			return props.Get("title").String(), nil
		}
	}
	return "", fmt.Errorf("sheet with GID %d not found in spreadsheet %s", c.gid, c.spreadsheetID)
}

// columnLetterByHeader finds the configured column by header name in row 1
// and returns its A1 letter.
func (c *Client) columnLetterByHeader(ctx context.Context, title string) (string, error) {
	rangespec := fmt.Sprintf("'%s'!1:1", title)
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.spreadsheetID, url.PathEscape(rangespec)))
	if err != nil {
		return "", fmt.Errorf("failed to fetch header row: %w", err)
	}

	headers := gjson.GetBytes(body, "values.0").Array()
	for i, header := range headers {
		if header.String() == c.column {
			return columnLetter(i), nil
		}
	}
	return "", fmt.Errorf("column %q not found in sheet %q", c.column, title)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("sheets API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// columnLetter converts a 0-based column index to A1 letter notation
// (A, B, ..., Z, AA, AB, ...).
func columnLetter(index int) string {
	result := ""
	index++
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}
