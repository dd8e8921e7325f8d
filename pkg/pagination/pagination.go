// Package pagination builds length-aware page objects whose links keep the
// caller's query string.
package pagination

import (
	"math"
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 15
	// pages shown either side of the current one before eliding with "..."
	window = 3
)

type Link struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

type Page[T any] struct {
	CurrentPage  int     `json:"current_page"`
	Data         []T     `json:"data"`
	FirstPageURL string  `json:"first_page_url"`
	From         *int    `json:"from"`
	LastPage     int     `json:"last_page"`
	LastPageURL  string  `json:"last_page_url"`
	Links        []Link  `json:"links"`
	NextPageURL  *string `json:"next_page_url"`
	Path         string  `json:"path"`
	PerPage      int     `json:"per_page"`
	PrevPageURL  *string `json:"prev_page_url"`
	To           *int    `json:"to"`
	Total        int     `json:"total"`
}

// Request is a normalised page request.
type Request struct {
	Page    int
	PerPage int
}

func NewRequest(page, perPage int) Request {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	// keeps Offset from overflowing
	if max := math.MaxInt / perPage; page > max {
		page = max
	}
	return Request{Page: page, PerPage: perPage}
}

// ParsePage reads a "page" query value, falling back to 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (r Request) Limit() int  { return r.PerPage }
func (r Request) Offset() int { return (r.Page - 1) * r.PerPage }

// New wraps one slice of results. query is the incoming query string; every
// non-empty parameter except "page" is carried into the generated links.
func New[T any](items []T, total int, req Request, path string, query url.Values) Page[T] {
	if items == nil {
		items = []T{}
	}

	lastPage := (total + req.PerPage - 1) / req.PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	base := url.Values{}
	for k, vs := range query {
		if k == "page" {
			continue
		}
		for _, v := range vs {
			if v != "" {
				base.Add(k, v)
			}
		}
	}

	pageURL := func(n int) string {
		q := url.Values{}
		for k, vs := range base {
			q[k] = vs
		}
		q.Set("page", strconv.Itoa(n))
		return path + "?" + q.Encode()
	}

	p := Page[T]{
		CurrentPage:  req.Page,
		Data:         items,
		FirstPageURL: pageURL(1),
		LastPage:     lastPage,
		LastPageURL:  pageURL(lastPage),
		Path:         path,
		PerPage:      req.PerPage,
		Total:        total,
	}

	if len(items) > 0 {
		from := req.Offset() + 1
		to := req.Offset() + len(items)
		p.From, p.To = &from, &to
	}
	if req.Page > 1 {
		u := pageURL(req.Page - 1)
		p.PrevPageURL = &u
	}
	if req.Page < lastPage {
		u := pageURL(req.Page + 1)
		p.NextPageURL = &u
	}

	first := pageURL(1)
	last := pageURL(lastPage)
	p.Links = append(p.Links,
		Link{URL: &first, Label: "First"},
		Link{URL: p.PrevPageURL, Label: "&laquo; Previous"},
	)
	for _, n := range pageNumbers(req.Page, lastPage) {
		if n == 0 {
			p.Links = append(p.Links, Link{Label: "..."})
			continue
		}
		u := pageURL(n)
		p.Links = append(p.Links, Link{URL: &u, Label: strconv.Itoa(n), Active: n == req.Page})
	}
	p.Links = append(p.Links,
		Link{URL: p.NextPageURL, Label: "Next &raquo;"},
		Link{URL: &last, Label: "Last"},
	)

	return p
}

// pageNumbers lists the numbered links; 0 marks an elided gap.
func pageNumbers(current, last int) []int {
	var out []int
	for n := 1; n <= last; n++ {
		switch {
		case n == 1 || n == last || (n >= current-window && n <= current+window):
			out = append(out, n)
		case len(out) > 0 && out[len(out)-1] != 0:
			out = append(out, 0)
		}
	}
	return out
}

// Map converts the data of a page while keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	data := make([]U, 0, len(p.Data))
	for _, item := range p.Data {
		data = append(data, fn(item))
	}
	return Page[U]{
		CurrentPage:  p.CurrentPage,
		Data:         data,
		FirstPageURL: p.FirstPageURL,
		From:         p.From,
		LastPage:     p.LastPage,
		LastPageURL:  p.LastPageURL,
		Links:        p.Links,
		NextPageURL:  p.NextPageURL,
		Path:         p.Path,
		PerPage:      p.PerPage,
		PrevPageURL:  p.PrevPageURL,
		To:           p.To,
		Total:        p.Total,
	}
}
