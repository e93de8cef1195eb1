package identity

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// hostProfile maps hosts the way URL parsers do: lowercased and punycoded,
// without the strict STD3 label rules of DNS lookups.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
)

// RDNN converts a namespace URL to reverse-domain notation:
// the domain labels reversed, followed by the non-empty path segments,
// joined with "/".
//
//	https://dmntk.io/models/loan -> io/dmntk/models/loan
func RDNN(namespace string) (string, error) {
	u, err := url.Parse(namespace)
	if err != nil {
		return "", fmt.Errorf("invalid namespace URL %q: %w", namespace, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("invalid namespace URL %q: missing scheme", namespace)
	}
	if u.Opaque != "" {
		return "", fmt.Errorf("invalid namespace URL %q: no path segments", namespace)
	}

	domain, err := domainOf(u)
	if err != nil {
		return "", fmt.Errorf("invalid namespace URL %q: %w", namespace, err)
	}

	labels := strings.Split(domain, ".")
	segments := make([]string, 0, len(labels))
	for i := len(labels) - 1; i >= 0; i-- {
		segments = append(segments, labels[i])
	}
	for _, s := range strings.Split(u.EscapedPath(), "/") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, "/"), nil
}

// domainOf returns the normalised domain of u. IP hosts have no domain.
func domainOf(u *url.URL) (string, error) {
	host := u.Hostname()
	if host == "" {
		return "", errors.New("missing domain")
	}
	if net.ParseIP(host) != nil {
		return "", errors.New("host is an IP address, not a domain")
	}
	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return strings.ToLower(host), nil
	}
	return ascii, nil
}
