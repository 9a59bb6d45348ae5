package credentials

import "strings"

// Field names as they appear in the credential file.
const (
	FieldPublicKey         = "public_key"
	FieldPrivateKey        = "private_key"
	FieldAccessToken       = "access_token"
	FieldAccessTokenSecret = "access_token_secret"
)

// Credentials are the consumer keys and, once authorised, the access token pair.
type Credentials struct {
	// PublicKey is the OAuth consumer key.
	PublicKey string `yaml:"public_key,omitempty"`

	// PrivateKey is the OAuth consumer secret.
	PrivateKey string `yaml:"private_key,omitempty"`

	// AccessToken is the permanent OAuth token issued by the handshake.
	AccessToken string `yaml:"access_token,omitempty"`

	// AccessTokenSecret is the secret belonging to AccessToken.
	AccessTokenSecret string `yaml:"access_token_secret,omitempty"`
}

func present(v string) bool {
	return strings.TrimSpace(v) != ""
}

// MissingKeys returns the names of the absent mandatory fields, in file order.
func (c Credentials) MissingKeys() []string {
	var missing []string
	if !present(c.PublicKey) {
		missing = append(missing, FieldPublicKey)
	}
	if !present(c.PrivateKey) {
		missing = append(missing, FieldPrivateKey)
	}
	return missing
}

// HasKeys reports whether both consumer keys are present.
func (c Credentials) HasKeys() bool {
	return len(c.MissingKeys()) == 0
}

// HasToken reports whether both access token fields are present.
func (c Credentials) HasToken() bool {
	return present(c.AccessToken) && present(c.AccessTokenSecret)
}

// Present maps every field name to whether it holds a value.
func (c Credentials) Present() map[string]bool {
	return map[string]bool{
		FieldPublicKey:         present(c.PublicKey),
		FieldPrivateKey:        present(c.PrivateKey),
		FieldAccessToken:       present(c.AccessToken),
		FieldAccessTokenSecret: present(c.AccessTokenSecret),
	}
}

// Fields lists the field names in file order.
func Fields() []string {
	return []string{FieldPublicKey, FieldPrivateKey, FieldAccessToken, FieldAccessTokenSecret}
}

// Merge returns base with every non-empty field of overlay applied on top.
// Values are trimmed of surrounding whitespace.
func Merge(base, overlay Credentials) Credentials {
	out := base
	if present(overlay.PublicKey) {
		out.PublicKey = strings.TrimSpace(overlay.PublicKey)
	}
	if present(overlay.PrivateKey) {
		out.PrivateKey = strings.TrimSpace(overlay.PrivateKey)
	}
	if present(overlay.AccessToken) {
		out.AccessToken = strings.TrimSpace(overlay.AccessToken)
	}
	if present(overlay.AccessTokenSecret) {
		out.AccessTokenSecret = strings.TrimSpace(overlay.AccessTokenSecret)
	}
	return out
}
