package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/choosyhq/sessiond/internal/session/domain"
)

// WeChat exchanges mini-program login codes for a verified identity.
// Two round trips: jscode2session turns the login code into an openid,
// then getuserphonenumber turns the phone code into the user's number.
type WeChat struct {
	AppID  string
	Secret string

	// BaseURL defaults to the live WeChat API. Tests point it at a
	// local server.
	BaseURL string

	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

const wechatAPI = "https://api.weixin.qq.com"

func (w *WeChat) Name() string { return "wx" }

func (w *WeChat) base() string {
	if w.BaseURL != "" {
		return w.BaseURL
	}
	return wechatAPI
}

func (w *WeChat) client() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

type wechatError struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (e wechatError) ok() bool { return e.ErrCode == 0 }

// Exchange verifies both codes with WeChat and assembles the identity.
func (w *WeChat) Exchange(ctx context.Context, creds Credentials) (domain.Identity, error) {
	if creds.LoginCode == "" || creds.PhoneCode == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing login_code or phone_code", ErrExchange)
	}

	openid, err := w.codeToSession(ctx, creds.LoginCode)
	if err != nil {
		return domain.Identity{}, err
	}

	phone, err := w.phoneNumber(ctx, creds.PhoneCode)
	if err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{
		Platform: w.Name(),
		Subject:  openid,
		Contact:  phone,
	}, nil
}

func (w *WeChat) codeToSession(ctx context.Context, code string) (string, error) {
	query := url.Values{
		"appid":      {w.AppID},
		"secret":     {w.Secret},
		"js_code":    {code},
		"grant_type": {"authorization_code"},
	}

	var result struct {
		wechatError
		OpenID     string `json:"openid"`
		SessionKey string `json:"session_key"`
	}
	if err := w.getJSON(ctx, "/sns/jscode2session?"+query.Encode(), &result); err != nil {
		return "", err
	}
	if !result.ok() || result.OpenID == "" {
		return "", fmt.Errorf("%w: jscode2session: %s", ErrExchange, result.ErrMsg)
	}
	return result.OpenID, nil
}

func (w *WeChat) phoneNumber(ctx context.Context, code string) (string, error) {
	accessToken, err := w.serverToken(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return "", err
	}

	var result struct {
		wechatError
		PhoneInfo struct {
			PhoneNumber string `json:"phoneNumber"`
		} `json:"phone_info"`
	}
	path := "/wxa/business/getuserphonenumber?access_token=" + url.QueryEscape(accessToken)
	if err := w.postJSON(ctx, path, body, &result); err != nil {
		return "", err
	}
	if !result.ok() || result.PhoneInfo.PhoneNumber == "" {
		return "", fmt.Errorf("%w: getuserphonenumber: %s", ErrExchange, result.ErrMsg)
	}
	return result.PhoneInfo.PhoneNumber, nil
}

// serverToken returns a cached server-to-server access token, fetching
// a new one shortly before the old one expires.
func (w *WeChat) serverToken(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.accessToken != "" && time.Now().Before(w.tokenExpiry) {
		return w.accessToken, nil
	}

	query := url.Values{
		"grant_type": {"client_credential"},
		"appid":      {w.AppID},
		"secret":     {w.Secret},
	}

	var result struct {
		wechatError
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := w.getJSON(ctx, "/cgi-bin/token?"+query.Encode(), &result); err != nil {
		return "", err
	}
	if !result.ok() || result.AccessToken == "" {
		return "", fmt.Errorf("%w: token: %s", ErrExchange, result.ErrMsg)
	}

	w.accessToken = result.AccessToken
	// Refresh a minute early so a token never expires mid-request.
	w.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn)*time.Second - time.Minute)
	return w.accessToken, nil
}

func (w *WeChat) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.base()+path, nil)
	if err != nil {
		return err
	}
	return w.do(req, out)
}

func (w *WeChat) postJSON(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.base()+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return w.do(req, out)
}

func (w *WeChat) do(req *http.Request, out any) error {
	resp, err := w.client().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExchange, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrExchange, err)
	}
	return nil
}
