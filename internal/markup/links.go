package markup

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// profileLink builds a display link for a profile URL. The label is the
// registrable domain plus path ("linkedin.com/in/jane"); a value that does
// not parse as a URL is shown as typed.
func profileLink(raw string) (Link, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Link{}, false
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return Link{Label: raw}, true
	}

	host := parsed.Hostname()
	label := strings.TrimPrefix(host, "www.")
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		// keep meaningful subdomains such as jane.github.io
		if sub := strings.TrimSuffix(strings.TrimPrefix(host, "www."), etld); sub == "" {
			label = etld
		}
	}
	if p := strings.TrimRight(parsed.EscapedPath(), "/"); p != "" {
		label += p
	}
	return Link{Label: label, URL: parsed.String()}, true
}
