package client

import (
	"crypto/tls"
	"net/http"
)

// insecureTransport mirrors the original remote client's
// danger_accept_invalid_certs knob, for self-signed panel deployments.
func insecureTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return t
}
