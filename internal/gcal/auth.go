package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// ErrNoToken is returned when no saved token exists yet. Run the auth flow first.
var ErrNoToken = errors.New("gcal: not authorized, run `pmx gcal auth`")

var scopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// OAuthConfig reads the client secrets file downloaded from the Google Cloud console.
// Desktop credentials without a redirect get the out-of-band copy/paste flow.
func OAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret file %s: %w", credentialsFile, err)
	}
	conf, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret file: %w", err)
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}
	return conf, nil
}

// AuthURL returns the consent URL. Offline access makes Google issue a refresh token.
func AuthURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("pmx", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades the pasted authorization code for a token and saves it.
func Exchange(ctx context.Context, conf *oauth2.Config, code, tokenFile string) error {
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging auth code: %w", err)
	}
	return saveToken(tokenFile, tok)
}

// HTTPClient returns a client that refreshes the saved token as needed.
func HTTPClient(ctx context.Context, conf *oauth2.Config, tokenFile string) (*http.Client, error) {
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, err
	}
	return conf.Client(ctx, tok), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
