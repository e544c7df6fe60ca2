package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		wantErr bool
	}{
		{name: "https", rawURL: "https://example.com/path?q=1#frag"},
		{name: "http with port", rawURL: "http://example.com:8080/"},
		{name: "subdomain", rawURL: "https://a.b.example.co.uk"},
		{name: "ipv4", rawURL: "http://192.168.0.1/x"},
		{name: "ipv6", rawURL: "http://[::1]:8080/"},
		{name: "localhost", rawURL: "http://localhost:3000"},
		{name: "surrounding spaces", rawURL: "  https://example.com  "},
		{name: "empty", rawURL: "", wantErr: true},
		{name: "spaces only", rawURL: "   ", wantErr: true},
		{name: "no scheme", rawURL: "example.com", wantErr: true},
		{name: "relative", rawURL: "/just/path", wantErr: true},
		{name: "ftp", rawURL: "ftp://example.com/file", wantErr: true},
		{name: "javascript", rawURL: "javascript:alert(1)", wantErr: true},
		{name: "javascript upper", rawURL: "JavaScript:alert(1)", wantErr: true},
		{name: "data", rawURL: "data:text/html;base64,PHNjcmlwdD4=", wantErr: true},
		{name: "embedded scheme", rawURL: "https://example.com/?next=javascript:alert(1)", wantErr: true},
		{name: "percent encoded scheme", rawURL: "https://example.com/?next=javascript%3Aalert(1)", wantErr: true},
		{name: "no host", rawURL: "http:///path", wantErr: true},
		{name: "root domain", rawURL: "http://com", wantErr: true},
		{name: "underscore label", rawURL: "http://exa_mple.example.com"},
		{name: "idn host", rawURL: "https://münchen.de"},
		{name: "punycode host", rawURL: "https://xn--mnchen-3ya.de/"},
		{name: "space in path", rawURL: "https://example.com/a b"},
		{name: "upper scheme", rawURL: "HTTPS://example.com/x"},
		{name: "empty label", rawURL: "http://exa..mple.com", wantErr: true},
		{name: "leading hyphen", rawURL: "http://-example.com", wantErr: true},
		{name: "own domain", rawURL: "https://lnkz.my/abc123", wantErr: true},
		{name: "own domain upper", rawURL: "https://LNKZ.MY/abc123", wantErr: true},
		{name: "too long", rawURL: "https://example.com/" + strings.Repeat("a", 2048), wantErr: true},
		{name: "too long non ascii", rawURL: "https://example.com/" + strings.Repeat("é", 2029), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateURL(tt.rawURL, "lnkz.my")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.NotEmpty(t, vErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.rawURL), got)
		})
	}
}

func TestValidateURL_MetadataIsNotData(t *testing.T) {
	_, err := ValidateURL("https://example.com/?type=metadata:1", "lnkz.my")
	assert.NoError(t, err)
}

func TestValidateURL_MaxLength(t *testing.T) {
	prefix := "https://example.com/"
	_, err := ValidateURL(prefix+strings.Repeat("a", 2048-len(prefix)), "lnkz.my")
	assert.NoError(t, err)
}

// Ограничение считается в символах: 2028 двухбайтовых символов укладываются в лимит.
func TestValidateURL_MaxLengthInCharacters(t *testing.T) {
	prefix := "https://example.com/"
	raw := prefix + strings.Repeat("é", 2048-len(prefix))
	got, err := ValidateURL(raw, "lnkz.my")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestValidateURL_OwnDomainUnicode(t *testing.T) {
	_, err := ValidateURL("https://xn--mnchen-3ya.de/abc123", "münchen.de")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
