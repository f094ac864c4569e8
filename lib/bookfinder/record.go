package bookfinder

import (
	"strconv"
	"strings"

	"minitools/lib/apperr"
)

type SearchResult struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// Doc holds only fields we print.
type Doc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear *int     `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
	ISBN             []string `json:"isbn"`
	Language         []string `json:"language"`
}

// Record is display form of Doc, every field filled.
type Record struct {
	Title            string
	Authors          string
	FirstPublishYear string
	Publisher        string
	ISBN             string
	Language         string
}

func joinOr(v []string, def string) string {
	if len(v) == 0 {
		return def
	}
	return strings.Join(v, ", ")
}

func NewRecord(d Doc) Record {
	r := Record{
		Title:            d.Title,
		Authors:          joinOr(d.AuthorName, "Unknown Author"),
		FirstPublishYear: "Unknown",
		Publisher:        joinOr(d.Publisher, "Unknown Publisher"),
		ISBN:             "Unknown ISBN",
		Language:         joinOr(d.Language, "Unknown"),
	}
	if r.Title == "" {
		r.Title = "Unknown Title"
	}
	if d.FirstPublishYear != nil {
		r.FirstPublishYear = strconv.Itoa(*d.FirstPublishYear)
	}
	if len(d.ISBN) != 0 {
		r.ISBN = d.ISBN[0]
	}
	return r
}

// First returns record of first hit.
func (r *SearchResult) First() (Record, error) {
	if r == nil || len(r.Docs) == 0 {
		return Record{}, apperr.New(apperr.EmptyResult, "search", "no book information found")
	}
	return NewRecord(r.Docs[0]), nil
}

// Rows gives field/value pairs in display order.
func (r Record) Rows() [][2]string {
	return [][2]string{
		{"Title", r.Title},
		{"Author(s)", r.Authors},
		{"First Publish Year", r.FirstPublishYear},
		{"Publisher", r.Publisher},
		{"ISBN", r.ISBN},
		{"Language", r.Language},
	}
}
