package youtube

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/brykly/blogflow/pkg/errs"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var watchHosts = map[string]struct{}{
	"youtube.com":              {},
	"www.youtube.com":          {},
	"m.youtube.com":            {},
	"music.youtube.com":        {},
	"youtube-nocookie.com":     {},
	"www.youtube-nocookie.com": {},
}

// pathPrefixes are the URL forms that carry the ID as a path segment.
var pathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}

// VideoID extracts the 11 character video ID from the usual YouTube URL
// forms: watch?v=, youtu.be/, /shorts/, /embed/, /live/ and /v/.
func VideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errs.Validationf("invalid YouTube URL %q: %v", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errs.Validationf("invalid YouTube URL %q: scheme must be http or https", raw)
	}

	host := strings.ToLower(u.Hostname())

	var id string

	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case isWatchHost(host):
		id = idFromPath(u)
	default:
		return "", errs.Validationf("%q is not a YouTube URL", raw)
	}

	if !videoIDPattern.MatchString(id) {
		return "", errs.Validationf("no video ID in %q", raw)
	}

	return id, nil
}

func isWatchHost(host string) bool {
	_, ok := watchHosts[host]

	return ok
}

func idFromPath(u *url.URL) string {
	if u.Path == "/watch" {
		return u.Query().Get("v")
	}

	for _, prefix := range pathPrefixes {
		if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
			id, _, _ := strings.Cut(rest, "/")

			return id
		}
	}

	return ""
}

// CanonicalURL returns the watch URL for a video ID.
func CanonicalURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
