package util

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc creates a proxy function for http.Transport.
// With no proxy URLs configured it falls back to the environment
// (HTTP_PROXY, HTTPS_PROXY, NO_PROXY). noProxy is a comma-separated list of
// hosts or domain suffixes that bypass the proxy.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := parseNoProxy(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if bypassesProxy(req.URL.Hostname(), bypass) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func parseNoProxy(noProxy string) []string {
	var entries []string
	for _, entry := range strings.Split(noProxy, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			entries = append(entries, strings.TrimPrefix(entry, "*"))
		}
	}
	return entries
}

// bypassesProxy reports whether host matches a NO_PROXY entry.
// "*" matches everything, ".example.com" and "example.com" match subdomains.
func bypassesProxy(host string, entries []string) bool {
	host = strings.ToLower(host)
	for _, entry := range entries {
		if entry == "" {
			return true
		}
		if ip := net.ParseIP(entry); ip != nil {
			if host == entry {
				return true
			}
			continue
		}
		suffix := strings.TrimPrefix(entry, ".")
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
