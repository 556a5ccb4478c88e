package discoverprofiles

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiresphere-backend/internal/common/config"
	"hiresphere-backend/internal/common/logger"
)

const searchPage = `<html><body>
	<a data-hovercard-type="user" href="/ada">Ada</a>
	<a data-hovercard-type="user" href="/linus">Linus</a>
	<a data-hovercard-type="user" href="/ada">Ada again</a>
	<a href="/pricing">Pricing</a>
</body></html>`

func profilePage(name, bio, location string) string {
	return fmt.Sprintf(`<html><body>
		<span class="p-name">%s</span>
		<div class="p-note">%s</div>
		<li itemprop="homeLocation">%s</li>
	</body></html>`, name, bio, location)
}

func testScraper(t *testing.T, serverURL string) *Scraper {
	t.Helper()
	s := NewScraper(config.SourcingConfig{DelayMS: 1}, logger.NewTestLogger(t))
	s.baseURLs["github"] = serverURL
	s.allowedDomains = nil
	return s
}

func TestDiscover_ScrapesSearchResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, searchPage)
	})
	mux.HandleFunc("/ada", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, profilePage("Ada Lovelace", "Backend engineer, go and postgresql", "London"))
	})
	mux.HandleFunc("/linus", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, profilePage("Linus T", "kernel things", "Helsinki"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := testScraper(t, server.URL)
	leads, err := s.Discover(context.Background(), "github", "golang", "", 10, nil)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	byName := map[string]int{}
	for i, lead := range leads {
		byName[lead.Name] = i
		assert.Equal(t, "github", lead.Platform)
		assert.NotEmpty(t, lead.ProfileURL)
	}
	require.Contains(t, byName, "Ada Lovelace")
	ada := leads[byName["Ada Lovelace"]]
	assert.Equal(t, "London", ada.Location)
	assert.Contains(t, ada.Skills, "go")
	assert.Contains(t, ada.Skills, "postgresql")
}

func TestDiscover_SkipsSeenAndCapsResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, searchPage)
	})
	mux.HandleFunc("/linus", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, profilePage("Linus T", "", ""))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := testScraper(t, server.URL)
	seen := map[string]bool{server.URL + "/ada": true}

	leads, err := s.Discover(context.Background(), "github", "golang", "", 1, seen)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Linus T", leads[0].Name)
}

func TestDiscover_UnsupportedPlatform(t *testing.T) {
	s := NewScraper(config.SourcingConfig{}, logger.NewNoOpLogger())

	_, err := s.Discover(context.Background(), "myspace", "q", "", 5, nil)
	require.Error(t, err)
}

func TestNormalizeProfileURL(t *testing.T) {
	cases := []struct {
		href string
		want string
		ok   bool
	}{
		{"/ada", "https://github.com/ada", true},
		{"https://github.com/ada", "https://github.com/ada", true},
		{"/search?q=x", "", false},
		{"", "", false},
		{"/", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeProfileURL("https://github.com", "/", tc.href)
		assert.Equal(t, tc.ok, ok, tc.href)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.href)
		}
	}
}
