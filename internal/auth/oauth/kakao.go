package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/pres/pkg/slogx"
	"golang.org/x/oauth2"
)

const (
	DefaultKakaoAuthHost = "https://kauth.kakao.com"
	DefaultKakaoAPIHost  = "https://kapi.kakao.com"

	maxProfileBody = 1 << 20
)

type KakaoConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthHost     string // authorize and token endpoints
	APIHost      string // user profile endpoint
	Scope        string // default scope, space separated

	// HTTPClient carries the upstream timeout. Defaults to a client with a
	// 10 second timeout.
	HTTPClient *http.Client
}

// KakaoProvider implements Provider for Kakao Login.
type KakaoProvider struct {
	config  *oauth2.Config
	apiHost string
	scope   string
	client  *http.Client
}

var _ Provider = (*KakaoProvider)(nil)

func NewKakaoProvider(cfg KakaoConfig) *KakaoProvider {
	if cfg.AuthHost == "" {
		cfg.AuthHost = DefaultKakaoAuthHost
	}
	if cfg.APIHost == "" {
		cfg.APIHost = DefaultKakaoAPIHost
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	authHost := strings.TrimRight(cfg.AuthHost, "/")

	return &KakaoProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authHost + "/oauth/authorize",
				TokenURL:  authHost + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiHost: strings.TrimRight(cfg.APIHost, "/"),
		scope:   cfg.Scope,
		client:  cfg.HTTPClient,
	}
}

func (p *KakaoProvider) Name() string { return "kakao" }

func (p *KakaoProvider) AuthCodeURL(state, scope string) string {
	if scope == "" {
		scope = p.scope
	}

	var opts []oauth2.AuthCodeOption
	if scope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("scope", scope))
	}
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange posts the code to the token endpoint as a form with the client
// credentials in the body.
func (p *KakaoProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	log := slogx.FromContext(ctx)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	tok, err := p.config.Exchange(ctx, code)
	if err == nil {
		return tok, nil
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		status := 0
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		log.Warn("kakao token exchange rejected",
			"status", status,
			"error_code", rerr.ErrorCode,
			"body", truncate(rerr.Body))

		kind := classifyStatus(status)
		if status < 400 || kind == ErrUnauthorized {
			// 2xx carrying an error field, or a 401 for bad client credentials,
			// are both problems with what we sent.
			kind = ErrBadRequest
		}
		return nil, fmt.Errorf("%w: token endpoint status %d", kind, status)
	}

	if terr := transportError(err); terr != nil {
		log.Warn("kakao token endpoint unreachable", slogx.Err(err))
		return nil, terr
	}

	// 200 without an access token, or a body x/oauth2 could not parse.
	log.Warn("kakao token response unusable", slogx.Err(err))
	return nil, fmt.Errorf("%w: %v", ErrInternal, err)
}

type kakaoUser struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
	Properties struct {
		Nickname string `json:"nickname"`
	} `json:"properties"`
}

// Profile calls GET /v2/user/me with the provider token.
func (p *KakaoProvider) Profile(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	log := slogx.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiHost+"/v2/user/me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	tok.SetAuthHeader(req)

	res, err := p.client.Do(req)
	if err != nil {
		log.Warn("kakao profile endpoint unreachable", slogx.Err(err))
		if terr := transportError(err); terr != nil {
			return nil, terr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxProfileBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read profile: %v", ErrUnavailable, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Warn("kakao profile rejected", "status", res.StatusCode, "body", truncate(body))
		return nil, fmt.Errorf("%w: profile endpoint status %d", classifyStatus(res.StatusCode), res.StatusCode)
	}

	var u kakaoUser
	if err := json.Unmarshal(body, &u); err != nil {
		log.Warn("kakao profile unparseable", slogx.Err(err), "body", truncate(body))
		return nil, fmt.Errorf("%w: decode profile: %v", ErrInternal, err)
	}

	if u.KakaoAccount.Email == "" {
		log.Warn("kakao profile has no email", "kakao_id", u.ID)
		return nil, fmt.Errorf("%w: profile has no email", ErrInternal)
	}

	nickname := u.Properties.Nickname
	if nickname == "" {
		nickname = u.KakaoAccount.Profile.Nickname
	}
	if nickname == "" {
		nickname, _, _ = strings.Cut(u.KakaoAccount.Email, "@")
	}

	return &Profile{
		Subject:  strconv.FormatInt(u.ID, 10),
		Email:    u.KakaoAccount.Email,
		Nickname: nickname,
	}, nil
}
