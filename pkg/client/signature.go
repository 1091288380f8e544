package client

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
)

// sign computes the X-Ovh-Signature header value.
//
// The API mandates "$1$" followed by the hex SHA-1 of
// secret+consumer+method+url+body+timestamp joined with "+".
func sign(applicationSecret, consumerKey, method, fullURL string, body []byte, timestamp int64) string {
	h := sha1.New()
	h.Write([]byte(strings.Join([]string{
		applicationSecret,
		consumerKey,
		method,
		fullURL,
		string(body),
		strconv.FormatInt(timestamp, 10),
	}, "+")))
	return "$1$" + hex.EncodeToString(h.Sum(nil))
}
