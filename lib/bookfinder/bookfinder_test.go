package bookfinder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"minitools/lib/apperr"
	"minitools/lib/logx"
)

const duneJSON = `{
  "numFound": 2,
  "docs": [
    {
      "title": "Dune",
      "author_name": ["Frank Herbert"],
      "first_publish_year": 1965,
      "publisher": ["Chilton Books", "Ace"],
      "language": ["eng", "spa"]
    },
    {"title": "Dune Messiah"}
  ]
}`

func testClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig
	cfg.BaseURL = srv.URL + "/search.json"
	c, err := NewClient(cfg, logx.NopLoggerX{})
	if err != nil {
		t.Fatal(err)
	}
	return c, srv
}

func TestLookupFound(t *testing.T) {
	var gotQ, gotRaw string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		gotRaw = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, duneJSON)
	})

	var out bytes.Buffer
	p := NewPrinter(c, &out, false)
	if err := p.Lookup(context.Background(), "  dune   & co "); err != nil {
		t.Fatal(err)
	}

	if gotQ != "dune & co" {
		t.Errorf("server got query %q", gotQ)
	}
	if gotRaw != "q=dune+%26+co" {
		t.Errorf("query not encoded: %q", gotRaw)
	}

	o := out.String()
	for _, exp := range []string{
		"Field", "Value",
		"Title", "Dune",
		"Author(s)", "Frank Herbert",
		"First Publish Year", "1965",
		"Publisher", "Chilton Books, Ace",
		"ISBN", "Unknown ISBN",
		"Language", "eng, spa",
	} {
		if !strings.Contains(o, exp) {
			t.Errorf("output lacks %q:\n%s", exp, o)
		}
	}
	if strings.Contains(o, "Dune Messiah") {
		t.Error("only first doc should be printed")
	}
	if strings.Contains(o, "\x1b[") {
		t.Errorf("colorless output contains escapes: %q", o)
	}
}

func TestLookupNotFound(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"numFound": 0, "docs": []}`)
	})
	var out bytes.Buffer
	if err := NewPrinter(c, &out, false).Lookup(context.Background(), "zzzzqqq"); err != nil {
		t.Fatalf("not found should not be error, got %v", err)
	}
	if strings.TrimSpace(out.String()) != NotFoundNotice {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestLookupHTTPError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	var out bytes.Buffer
	err := NewPrinter(c, &out, false).Lookup(context.Background(), "dune")
	if !errors.Is(err, apperr.NetworkError) {
		t.Errorf("exp NetworkError, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 500 {
		t.Errorf("exp StatusError 500, got %s", spew.Sdump(err))
	}
	if !strings.Contains(out.String(), "Error: Unable to fetch data. Status code: 500") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSearchFailures(t *testing.T) {
	c, srv := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"docs": [`)
	})
	if _, err := c.Search(context.Background(), "x"); !errors.Is(err, apperr.DecodeError) {
		t.Errorf("exp DecodeError, got %v", err)
	}
	if _, err := c.Search(context.Background(), " \t "); !errors.Is(err, apperr.InvalidInput) {
		t.Errorf("exp InvalidInput, got %v", err)
	}

	srv.Close()
	var out bytes.Buffer
	err := NewPrinter(c, &out, false).Lookup(context.Background(), "x")
	if !errors.Is(err, apperr.NetworkError) {
		t.Errorf("exp NetworkError, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "Error: ") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestNewRecordDefaults(t *testing.T) {
	year := 1954
	cases := []struct {
		doc Doc
		exp Record
	}{
		{
			Doc{},
			Record{
				Title:            "Unknown Title",
				Authors:          "Unknown Author",
				FirstPublishYear: "Unknown",
				Publisher:        "Unknown Publisher",
				ISBN:             "Unknown ISBN",
				Language:         "Unknown",
			},
		},
		{
			Doc{
				Title:            "The Fellowship of the Ring",
				AuthorName:       []string{"J.R.R. Tolkien"},
				FirstPublishYear: &year,
				Publisher:        []string{"Allen & Unwin"},
				ISBN:             []string{"9780261102354", "0261102354"},
				Language:         []string{"eng"},
			},
			Record{
				Title:            "The Fellowship of the Ring",
				Authors:          "J.R.R. Tolkien",
				FirstPublishYear: "1954",
				Publisher:        "Allen & Unwin",
				ISBN:             "9780261102354",
				Language:         "eng",
			},
		},
	}
	for i, c := range cases {
		if got := NewRecord(c.doc); got != c.exp {
			t.Errorf("case %d: exp %s got %s", i, spew.Sdump(c.exp), spew.Sdump(got))
		}
	}

	var nilres *SearchResult
	if _, err := nilres.First(); !errors.Is(err, apperr.EmptyResult) {
		t.Errorf("exp EmptyResult, got %v", err)
	}
}

func TestNewClientConfig(t *testing.T) {
	for _, u := range []string{"ftp://example.org/x", "://bad", "http://"} {
		cfg := DefaultConfig
		cfg.BaseURL = u
		if _, err := NewClient(cfg, logx.NopLoggerX{}); !errors.Is(err, apperr.InvalidInput) {
			t.Errorf("%q: exp InvalidInput, got %v", u, err)
		}
	}
	cfg := DefaultConfig
	cfg.Proxy = "http://proxy:3128"
	if _, err := NewClient(cfg, logx.NopLoggerX{}); err == nil {
		t.Error("expected error for unsupported proxy")
	}

	c, err := NewClient(Config{}, logx.NopLoggerX{})
	if err != nil {
		t.Fatal(err)
	}
	if u := c.SearchURL("the hobbit"); u != "https://openlibrary.org/search.json?q=the+hobbit" {
		t.Errorf("unexpected url %q", u)
	}
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(nil, &out, false)
	q, err := p.Prompt(strings.NewReader("dune\r\nrest"))
	if err != nil || q != "dune" {
		t.Errorf("got %q %v", q, err)
	}
	if out.String() != "Enter a book name: " {
		t.Errorf("unexpected prompt %q", out.String())
	}
	if q, err = p.Prompt(strings.NewReader("no newline")); err != nil || q != "no newline" {
		t.Errorf("got %q %v", q, err)
	}
	if _, err = p.Prompt(strings.NewReader("")); err == nil {
		t.Error("expected EOF")
	}
}
