package snowsql

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pingcap/errors"
)

const tokenRequestPath = "/oauth/token-request"

// fetchAccessToken exchanges a refresh token for an access token against
// the account's OAuth endpoint.
func fetchAccessToken(config *Config) (string, error) {
	endpoint := fmt.Sprintf("https://%s.snowflakecomputing.com%s", config.AccountId, tokenRequestPath)

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", config.OAuthRefreshToken)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Trace(err)
	}
	req.SetBasicAuth(config.OAuthClientId, config.OAuthClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Annotate(err, "Failed to request access token")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Trace(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("Token endpoint returned %s: %s", resp.Status, string(body))
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", errors.Annotate(err, "Failed to decode token response")
	}
	if token.AccessToken == "" {
		return "", errors.New("Token endpoint returned no access_token")
	}
	return token.AccessToken, nil
}
