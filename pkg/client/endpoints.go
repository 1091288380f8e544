package client

import (
	"fmt"
	"strings"
)

// DefaultEndpoint is used when the configuration does not name one.
const DefaultEndpoint = "ovh-eu"

// Endpoints maps endpoint aliases to API base URLs.
var Endpoints = map[string]string{
	"ovh-eu":        "https://eu.api.ovh.com/1.0",
	"ovh-ca":        "https://ca.api.ovh.com/1.0",
	"ovh-us":        "https://api.us.ovhcloud.com/1.0",
	"kimsufi-eu":    "https://eu.api.kimsufi.com/1.0",
	"kimsufi-ca":    "https://ca.api.kimsufi.com/1.0",
	"soyoustart-eu": "https://eu.api.soyoustart.com/1.0",
	"soyoustart-ca": "https://ca.api.soyoustart.com/1.0",
}

// ResolveEndpoint returns the base URL for an alias or a literal http(s) URL.
func ResolveEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if base, ok := Endpoints[endpoint]; ok {
		return base, nil
	}
	if strings.HasPrefix(endpoint, "https://") || strings.HasPrefix(endpoint, "http://") {
		return strings.TrimRight(endpoint, "/"), nil
	}
	return "", fmt.Errorf("unknown endpoint %q", endpoint)
}
