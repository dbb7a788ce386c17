// Package check fetches redirect targets to catch rules pointing at missing pages.
package check

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// Result is the outcome of fetching one target path.
type Result struct {
	Path      string
	URL       string
	Status    int
	Canonical string
	Err       error
}

// OK reports a 2xx response with no transport error.
func (r Result) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

func (r Result) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("FAIL %s: %v", r.URL, r.Err)
	case !r.OK():
		return fmt.Sprintf("FAIL %s: status %d", r.URL, r.Status)
	case r.Canonical != "" && r.Canonical != r.URL:
		return fmt.Sprintf("OK   %s (canonical %s)", r.URL, r.Canonical)
	}
	return fmt.Sprintf("OK   %s", r.URL)
}

// Checker resolves paths against Base and fetches them.
type Checker struct {
	Base        *url.URL
	Parallelism int
	Logger      *slog.Logger
}

// Run fetches each distinct path once and returns results in first-seen order.
func (c *Checker) Run(paths []string) ([]Result, error) {
	if c.Base == nil || c.Base.Host == "" {
		return nil, errors.New("base url must include a host")
	}
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}
	parallelism := c.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	var (
		mu      sync.Mutex
		order   []string
		results = map[string]*Result{}
	)
	for _, p := range paths {
		u := c.resolve(p)
		if _, ok := results[u]; ok {
			continue
		}
		order = append(order, u)
		results[u] = &Result{Path: p, URL: u}
	}

	col := colly.NewCollector(
		colly.Async(true),
		colly.AllowURLRevisit(),
	)
	if err := col.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: parallelism,
	}); err != nil {
		return nil, err
	}

	lookup := func(r *colly.Request) *Result {
		return results[r.Ctx.Get("target")]
	}

	col.OnHTML("head", func(e *colly.HTMLElement) {
		mu.Lock()
		defer mu.Unlock()
		if res := lookup(e.Request); res != nil {
			res.Canonical = Canonical(e.DOM, e.Request.URL)
		}
	})

	col.OnResponse(func(r *colly.Response) {
		log.Debug("checked", "url", r.Request.URL.String(), "status", r.StatusCode)
		mu.Lock()
		defer mu.Unlock()
		if res := lookup(r.Request); res != nil {
			res.Status = r.StatusCode
		}
	})

	col.OnError(func(r *colly.Response, err error) {
		log.Debug("check failed", "url", r.Request.URL.String(), "err", err)
		mu.Lock()
		defer mu.Unlock()
		if res := lookup(r.Request); res != nil {
			res.Status = r.StatusCode
			if r.StatusCode == 0 {
				res.Err = err
			}
		}
	})

	for _, u := range order {
		ctx := colly.NewContext()
		ctx.Put("target", u)
		if err := col.Request("GET", u, nil, ctx, nil); err != nil {
			mu.Lock()
			results[u].Err = err
			mu.Unlock()
		}
	}
	col.Wait()

	out := make([]Result, 0, len(order))
	for _, u := range order {
		out = append(out, *results[u])
	}
	return out, nil
}

func (c *Checker) resolve(p string) string {
	ref, err := url.Parse(p)
	if err != nil || ref.IsAbs() {
		return p
	}
	if !strings.HasPrefix(ref.Path, "/") {
		ref.Path = "/" + ref.Path
	}
	return c.Base.ResolveReference(ref).String()
}

// Canonical returns the absolute href of the page's rel=canonical link, if any.
func Canonical(sel *goquery.Selection, base *url.URL) string {
	href, ok := sel.Find(`link[rel="canonical"]`).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return ref.String()
}
