package discoverprofiles

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
	"hiresphere-backend/internal/resume"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// platformRules drives the two-phase scrape for one platform: a search page
// that yields profile links, then per-profile field extraction.
type platformRules struct {
	searchURL   func(base, query, location string) string
	linkSel     string
	profilePath string
	nameSels    []string
	headlineSel string
	locationSel string
}

var platforms = map[string]platformRules{
	"github": {
		searchURL: func(base, query, location string) string {
			q := "type:user " + query
			if location != "" {
				q += " location:" + location
			}
			return fmt.Sprintf("%s/search?q=%s&type=users", base, url.QueryEscape(q))
		},
		linkSel:     "a[data-hovercard-type='user']",
		profilePath: "/",
		nameSels:    []string{"span.p-name", "span.p-nickname"},
		headlineSel: "div.p-note",
		locationSel: "li[itemprop='homeLocation']",
	},
	"stackoverflow": {
		searchURL: func(base, query, _ string) string {
			return fmt.Sprintf("%s/users?tab=reputation&filter=all&search=%s", base, url.QueryEscape(query))
		},
		linkSel:     "div.user-details a",
		profilePath: "/users/",
		nameSels:    []string{"div.profile-user--name div", "h1"},
		headlineSel: "div.profile-user--bio",
		locationSel: "div.profile-user--location",
	},
	"devto": {
		searchURL: func(base, query, _ string) string {
			return fmt.Sprintf("%s/search?q=%s&filters=class_name:User", base, url.QueryEscape(query))
		},
		linkSel:     "a.crayons-link",
		profilePath: "/",
		nameSels:    []string{"h1.crayons-title", "h1"},
		headlineSel: "p.profile-header__bio",
		locationSel: "p.profile-header__meta__item",
	},
}

// Scraper discovers public candidate profiles with colly.
type Scraper struct {
	cfg    config.SourcingConfig
	logger logger.Logger

	// baseURLs and allowedDomains are overridable so tests can point the
	// collector at a local server.
	baseURLs       map[string]string
	allowedDomains []string
}

func NewScraper(cfg config.SourcingConfig, log logger.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: log,
		baseURLs: map[string]string{
			"github":        "https://github.com",
			"stackoverflow": "https://stackoverflow.com",
			"devto":         "https://dev.to",
		},
		allowedDomains: []string{"github.com", "stackoverflow.com", "dev.to"},
	}
}

func (s *Scraper) newCollector() *colly.Collector {
	opts := []colly.CollectorOption{colly.Async(true)}
	if len(s.allowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(s.allowedDomains...))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(30 * time.Second)

	delay := time.Duration(s.cfg.DelayMS) * time.Millisecond
	if delay == 0 {
		delay = 2 * time.Second
	}
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       delay,
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", defaultUserAgent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		s.logger.Debug("visiting", map[string]interface{}{"url": r.URL.String()})
	})
	c.OnError(func(r *colly.Response, err error) {
		s.logger.Warn("request failed", map[string]interface{}{
			"url":   r.Request.URL.String(),
			"error": err.Error(),
		})
	})
	return c
}

// Discover runs a search for the platform and scrapes up to max profile
// pages, skipping URLs already present in seen.
func (s *Scraper) Discover(ctx context.Context, platform, query, location string, max int, seen map[string]bool) ([]models.CandidateLead, error) {
	rules, ok := platforms[platform]
	if !ok {
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}
	base := s.baseURLs[platform]
	if max <= 0 {
		max = 10
	}

	profileURLs := s.collectProfileURLs(rules, base, query, location, max, seen)
	s.logger.Info("search complete", map[string]interface{}{
		"platform": platform,
		"profiles": len(profileURLs),
	})
	if len(profileURLs) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.scrapeProfiles(rules, platform, profileURLs), nil
}

func (s *Scraper) collectProfileURLs(rules platformRules, base, query, location string, max int, seen map[string]bool) []string {
	var mu sync.Mutex
	var urls []string

	c := s.newCollector()
	c.OnHTML(rules.linkSel, func(e *colly.HTMLElement) {
		profileURL, ok := normalizeProfileURL(base, rules.profilePath, e.Attr("href"))
		if !ok || seen[profileURL] {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if len(urls) >= max {
			return
		}
		for _, existing := range urls {
			if existing == profileURL {
				return
			}
		}
		urls = append(urls, profileURL)
	})

	if err := c.Visit(rules.searchURL(base, query, location)); err != nil {
		s.logger.Warn("search visit failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	c.Wait()
	return urls
}

func (s *Scraper) scrapeProfiles(rules platformRules, platform string, profileURLs []string) []models.CandidateLead {
	var mu sync.Mutex
	var leads []models.CandidateLead

	c := s.newCollector()
	c.OnHTML("html", func(e *colly.HTMLElement) {
		lead := extractLead(rules, platform, e)
		if lead == nil {
			return
		}
		mu.Lock()
		leads = append(leads, *lead)
		mu.Unlock()
	})

	for _, u := range profileURLs {
		if err := c.Visit(u); err != nil {
			s.logger.Warn("profile visit failed", map[string]interface{}{
				"url":   u,
				"error": err.Error(),
			})
		}
	}
	c.Wait()
	return leads
}

func extractLead(rules platformRules, platform string, e *colly.HTMLElement) *models.CandidateLead {
	var name string
	for _, sel := range rules.nameSels {
		if name = strings.TrimSpace(e.ChildText(sel)); name != "" {
			break
		}
	}
	if name == "" {
		return nil
	}

	headline := strings.TrimSpace(e.ChildText(rules.headlineSel))
	if len(headline) > 500 {
		headline = headline[:500]
	}

	return &models.CandidateLead{
		Name:       name,
		Headline:   headline,
		Platform:   platform,
		ProfileURL: e.Request.URL.String(),
		Location:   strings.TrimSpace(e.ChildText(rules.locationSel)),
		Skills:     resume.ExtractSkills(headline),
	}
}

// normalizeProfileURL turns a search-result href into an absolute profile URL,
// rejecting anything that is not a single-segment path under profilePath.
func normalizeProfileURL(base, profilePath, href string) (string, bool) {
	if href == "" {
		return "", false
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, true
	}
	if !strings.HasPrefix(href, profilePath) {
		return "", false
	}
	rest := strings.Trim(strings.TrimPrefix(href, profilePath), "/")
	if rest == "" || strings.ContainsAny(rest, "?#") {
		return "", false
	}
	return base + href, true
}
