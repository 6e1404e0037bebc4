package fiverr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"fiverr-scraper/config"
	"fiverr-scraper/fetch"
	"fiverr-scraper/models"
	"fiverr-scraper/utils"
)

const (
	baseURL    = "https://www.fiverr.com"
	searchPath = "/search/gigs"
)

// Fetcher is the outbound page client the scraper talks through.
type Fetcher interface {
	Fetch(ctx context.Context, url string, extractProps bool) (*fetch.Response, error)
}

// RecordStore persists normalized gig records.
type RecordStore interface {
	Save(keyword string, rec *models.GigRecord) (string, error)
}

// Scraper walks search-result pages for a keyword and collects one record
// per gig found, fetching each gig's detail page for the full data.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	client  Fetcher
	store   RecordStore
	pool    *utils.WorkerPool
	visited *utils.URLSet
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger, client Fetcher, store RecordStore) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		store:   store,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, time.Duration(cfg.RequestDelayMs)*time.Millisecond),
		visited: utils.NewURLSet(),
	}
}

// FailedGig identifies one gig that could not be collected.
type FailedGig struct {
	ID     int64  `json:"gig_id"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Result summarizes one collection run. A run never fails as a whole:
// per-gig and per-page failures are recorded here instead.
type Result struct {
	RunID     string
	Keyword   string
	Pages     int
	Attempted int
	Stored    int
	Failed    []FailedGig
	Records   []*models.GigRecord
}

// Collect drives pagination and per-gig detail collection for the keyword.
// Cancelling ctx stops the run between requests; everything stored up to
// that point stays on disk and is reflected in the Result.
func (s *Scraper) Collect(ctx context.Context, keyword string) *Result {
	res := &Result{RunID: uuid.New().String(), Keyword: keyword}
	s.logger.Info("[fiverr] Starting collection for %q — run %s, target %d page(s)",
		keyword, res.RunID, s.cfg.PagesToScrape)

	var mu sync.Mutex
	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		if ctx.Err() != nil {
			s.logger.Warn("[fiverr] Interrupted — stopping before page %d", page)
			break
		}

		refs, err := s.searchPage(ctx, keyword, page)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Warn("[fiverr] Interrupted — stopping at page %d", page)
				break
			}
			s.logger.Error("[fiverr] Page %d failed: %v — skipping page", page, err)
			continue
		}
		res.Pages++

		if len(refs) == 0 {
			s.logger.Warn("[fiverr] Page %d returned 0 gigs — stopping pagination", page)
			break
		}
		s.logger.Info("[fiverr] Page %d — found %d gigs", page, len(refs))

		for _, ref := range refs {
			if ctx.Err() != nil {
				break
			}
			if !s.visited.Add(ref.URL) {
				s.logger.Debug("[fiverr] Skipping duplicate: %s", ref.URL)
				continue
			}

			r := ref
			mu.Lock()
			res.Attempted++
			mu.Unlock()

			s.pool.Submit(func() {
				if ctx.Err() != nil {
					mu.Lock()
					res.Failed = append(res.Failed, FailedGig{ID: r.ID, URL: r.URL, Reason: "interrupted"})
					mu.Unlock()
					return
				}

				rec, err := s.collectGig(ctx, keyword, r)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					s.logger.Error("[fiverr] Gig %d (%s) failed: %v", r.ID, r.URL, err)
					res.Failed = append(res.Failed, FailedGig{ID: r.ID, URL: r.URL, Reason: err.Error()})
					return
				}
				res.Stored++
				res.Records = append(res.Records, rec)
				s.logger.Info("[fiverr] Stored gig %d by %s (%d/%d)", rec.ID, rec.Seller, res.Stored, res.Attempted)
			})
		}
		s.pool.Wait()

		s.logger.Info("[fiverr] Page %d done — %d gig(s) stored so far", page, res.Stored)
	}

	s.logger.Info("[fiverr] Collection complete — attempted %d, stored %d, failed %d",
		res.Attempted, res.Stored, len(res.Failed))
	return res
}

// searchPage fetches one search-results page and extracts gig references
// from its embedded state.
func (s *Scraper) searchPage(ctx context.Context, keyword string, page int) ([]models.GigRef, error) {
	s.pool.Throttle()

	pageURL := searchURL(keyword, page)
	s.logger.Debug("[fiverr] Fetching page %d: %s", page, pageURL)

	resp, err := s.client.Fetch(ctx, pageURL, true)
	if err != nil {
		return nil, err
	}
	if resp.PropsErr != nil {
		return nil, fmt.Errorf("page %d: %w", page, resp.PropsErr)
	}

	return extractGigRefs(resp.Props), nil
}

// collectGig fetches one gig's detail page, normalizes it and stores the
// record.
func (s *Scraper) collectGig(ctx context.Context, keyword string, ref models.GigRef) (*models.GigRecord, error) {
	resp, err := s.client.Fetch(ctx, ref.URL, true)
	if err != nil {
		return nil, err
	}
	if resp.PropsErr != nil {
		return nil, fmt.Errorf("gig %d: %w", ref.ID, resp.PropsErr)
	}

	rec := normalizeGig(ref, resp.Props, s.logger)
	if _, err := s.store.Save(keyword, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// searchURL builds the search-results URL for a keyword and 1-based page.
func searchURL(keyword string, page int) string {
	v := url.Values{}
	v.Set("query", keyword)
	v.Set("page", strconv.Itoa(page))
	return baseURL + searchPath + "?" + v.Encode()
}
