// Package board implements the HTTP client for the external job board's
// OAuth endpoints and application API.
package board

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobtrack/config"
	"jobtrack/internal/domain/entity"
	domainerrors "jobtrack/internal/domain/errors"
	"jobtrack/internal/domain/service"
	"jobtrack/internal/errors"
)

const applicationsPath = "/applications/mine"

// Client talks to the board's OAuth token endpoint and REST API. Every
// request runs under the caller's context plus the configured client timeout,
// so a hung provider call never blocks other requests.
type Client struct {
	cfg        *config.BoardConfig
	httpClient *http.Client
	clock      service.Clock
	logger     *slog.Logger
}

// NewClient is the constructor for Client.
func NewClient(cfg *config.Config, clock service.Clock, logger *slog.Logger) service.BoardClient {
	return &Client{
		cfg: cfg.Board,
		httpClient: &http.Client{
			Timeout: cfg.Board.RequestTimeout,
		},
		clock:  clock,
		logger: logger,
	}
}

// AuthorizationURL builds the board's authorization-code URL carrying the
// given opaque state value.
func (c *Client) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.cfg.ClientID)
	params.Set("redirect_uri", c.cfg.RedirectURI)
	params.Set("scope", c.cfg.Scopes)
	params.Set("state", state)

	return c.cfg.AuthURL + "?" + params.Encode()
}

// ExchangeCode trades a one-time authorization code for a token pair.
// The board enforces single use: a second exchange with the same code fails.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*entity.BoardCredential, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", c.cfg.RedirectURI)

	return c.requestToken(ctx, data, domainerrors.ErrOAuthCodeInvalid)
}

// Refresh trades a refresh token for a fresh token pair. A dead refresh token
// surfaces as BOARD_REAUTH_REQUIRED so callers route the user back through
// the authorization flow instead of retrying.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*entity.BoardCredential, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("refresh_token", refreshToken)

	return c.requestToken(ctx, data, domainerrors.ErrBoardReauthRequired)
}

// tokenResponse is the closed shape of the board's token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// oauthError is the closed shape of an OAuth 2.0 error response body.
type oauthError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func (c *Client) requestToken(ctx context.Context, form url.Values, grantRejected *domainerrors.BaseError) (*entity.BoardCredential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.ErrBoardUnavailable.WrapMessage("token request failed: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.tokenError(resp, grantRejected)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, errors.Wrap(err, "failed to decode token response")
	}
	if tr.AccessToken == "" || tr.RefreshToken == "" || tr.ExpiresIn <= 0 {
		return nil, errors.New("token response is missing required fields")
	}

	return &entity.BoardCredential{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    c.clock.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// tokenError classifies a non-200 token endpoint response. invalid_grant and
// other 4xx responses are permanent for the presented grant; 5xx is transient.
func (c *Client) tokenError(resp *http.Response, grantRejected *domainerrors.BaseError) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= http.StatusInternalServerError {
		return domainerrors.ErrBoardUnavailable.WrapMessage("token endpoint returned " + resp.Status)
	}

	var oe oauthError
	if err := json.Unmarshal(body, &oe); err == nil && oe.Error != "" {
		c.logger.Warn("Board token endpoint rejected the grant",
			slog.Int("status", resp.StatusCode),
			slog.String("oauth_error", oe.Error),
		)
		if oe.Error == "invalid_grant" {
			return grantRejected.WrapMessage("board reported invalid_grant")
		}

		return domainerrors.ErrBoardRequestRejected.WrapMessage("board reported " + oe.Error)
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return grantRejected.WrapMessage("token endpoint returned " + resp.Status)
	}

	return domainerrors.ErrBoardRequestRejected.WrapMessage("token endpoint returned " + resp.Status)
}

// applicationItem is the closed shape of one record in the board's
// application listing.
type applicationItem struct {
	ID        string `json:"id"`
	VacancyID string `json:"vacancy_id"`
	State     string `json:"state"`
}

type applicationListResponse struct {
	Items []applicationItem `json:"items"`
}

// ListApplications fetches the user's application records from the board.
// The envelope must decode cleanly; per-record problems (missing ids) are
// left to the sync engine, which skips and counts them without failing the
// whole batch.
func (c *Client) ListApplications(ctx context.Context, accessToken string) ([]service.BoardApplication, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIBaseURL+applicationsPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create listing request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.ErrBoardUnavailable.WrapMessage("listing request failed: " + err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domainerrors.ErrBoardReauthRequired.WrapMessage("listing returned " + resp.Status)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, domainerrors.ErrBoardUnavailable.WrapMessage("listing returned " + resp.Status)
	default:
		return nil, domainerrors.ErrBoardRequestRejected.WrapMessage("listing returned " + resp.Status)
	}

	var lr applicationListResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, errors.Wrap(err, "failed to decode application listing")
	}

	records := make([]service.BoardApplication, 0, len(lr.Items))
	for _, item := range lr.Items {
		records = append(records, service.BoardApplication{
			ID:        item.ID,
			VacancyID: item.VacancyID,
			State:     item.State,
		})
	}

	return records, nil
}
