package mailer

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Links builds the public URLs embedded in outgoing mail.
type Links struct {
	BaseURL string
}

func (l Links) TrackingPixel(campaignID uuid.UUID, email string) string {
	q := url.Values{}
	q.Set("campaign_id", campaignID.String())
	q.Set("email", EncodeEmail(email))
	return l.BaseURL + "/api/track-open?" + q.Encode()
}

func (l Links) Unsubscribe(email string) string {
	return l.BaseURL + "/api/unsub?e=" + url.QueryEscape(EncodeEmail(email))
}

func (l Links) Preferences(email string) string {
	return l.BaseURL + "/api/unsubscribe?email=" + url.QueryEscape(email)
}

func EncodeEmail(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

// DecodeEmail accepts a base64 identifier (std or url alphabet, padded or not)
// or a plaintext address. Anything that does not decode to an address is returned as given.
func DecodeEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "@") {
		return s
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.URLEncoding,
		base64.RawStdEncoding, base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil && strings.Contains(string(b), "@") {
			return strings.TrimSpace(string(b))
		}
	}
	return s
}
