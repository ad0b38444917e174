package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc builds the transport proxy selector for outbound AI calls.
// Explicit settings win over HTTP_PROXY, HTTPS_PROXY and NO_PROXY from the
// environment. HTTPS traffic uses httpProxy when httpsProxy is empty.
// Loopback hosts and hosts matching noProxy are dialled directly.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	env := httpproxy.FromEnvironment()
	cfg := &httpproxy.Config{
		HTTPProxy:  firstSet(httpProxy, env.HTTPProxy),
		HTTPSProxy: firstSet(httpsProxy, httpProxy, env.HTTPSProxy),
		NoProxy:    firstSet(noProxy, env.NoProxy),
		CGI:        env.CGI,
	}
	proxy := cfg.ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
