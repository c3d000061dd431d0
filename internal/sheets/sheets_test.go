package sheets

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/hashicorp/go-retryablehttp"
)

func testClient(baseURL string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 0

	return &Client{
		spreadsheetID: "spreadsheet-1",
		gid:           42,
		column:        "Coupon",
		http:          retryClient,
		baseURL:       baseURL,
	}
}

func sheetsHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/spreadsheet-1":
			w.Write([]byte(`{"sheets":[
				{"properties":{"sheetId":7,"title":"Archive"}},
				{"properties":{"sheetId":42,"title":"Coupons"}}
			]}`))
		case strings.Contains(path, "1:1"):
			w.Write([]byte(`{"values":[["Name","Coupon","Notes"]]}`))
		case strings.Contains(path, "'Coupons'!B2:B"):
			w.Write([]byte(`{"values":[["SAVE10"],["  WELCOME20  "],[""],["OLD5"]]}`))
		default:
			t.Errorf("unexpected request path: %s", path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestFetchCodes(t *testing.T) {
	server := httptest.NewServer(sheetsHandler(t))
	defer server.Close()

	client := testClient(server.URL)

	codes, err := client.FetchCodes(context.Background())
	if err != nil {
		t.Fatalf("FetchCodes() error = %v", err)
	}

	want := []string{"SAVE10", "WELCOME20", "OLD5"}
	if !reflect.DeepEqual(codes, want) {
		t.Errorf("FetchCodes() = %v, want %v", codes, want)
	}
}

func TestFetchCodesUnknownGID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sheets":[{"properties":{"sheetId":7,"title":"Archive"}}]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	if _, err := client.FetchCodes(context.Background()); err == nil {
		t.Error("FetchCodes() should fail when the sheet GID is missing")
	}
}

func TestFetchCodesUnknownColumn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/spreadsheet-1" {
			w.Write([]byte(`{"sheets":[{"properties":{"sheetId":42,"title":"Coupons"}}]}`))
			return
		}
		w.Write([]byte(`{"values":[["Name","Notes"]]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	if _, err := client.FetchCodes(context.Background()); err == nil {
		t.Error("FetchCodes() should fail when the coupon column is missing")
	}
}

func TestFetchCodesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)

	if _, err := client.FetchCodes(context.Background()); err == nil {
		t.Error("FetchCodes() should surface API errors")
	}
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		if got := columnLetter(tt.index); got != tt.want {
			t.Errorf("columnLetter(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
