package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

// WatchURLPrefix is the canonical URL form of a recording.
const WatchURLPrefix = "https://www.youtube.com/watch?v="

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID returns the platform id from a bare id or from any of the
// recognised URL shapes: watch?v=, youtu.be/<id>, /embed/<id>, /shorts/<id>.
func ExtractVideoID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if videoIDRe.MatchString(s) {
		return s, true
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}

	var id string
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "youtu.be":
		id = firstPathSegment(u.Path)
	case u.Query().Get("v") != "":
		id = u.Query().Get("v")
	default:
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id = firstPathSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	}

	if !videoIDRe.MatchString(id) {
		return "", false
	}
	return id, true
}

func firstPathSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}

// CanonicalURL builds the watch URL for id.
func CanonicalURL(id string) string {
	return WatchURLPrefix + id
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
