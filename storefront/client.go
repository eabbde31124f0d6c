package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrEmptySubdomain = errors.New("subdomain is empty")

const maxResponseSize = 1 << 20

type Client struct {
	// BaseURL is the marketplace origin, e.g. "https://example.com". The API lives under /api.
	BaseURL string

	client *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CheckAvailability reports the subdomain as taken when the API knows a storefront with that name.
func (c *Client) CheckAvailability(ctx context.Context, subdomain string) Action {
	if subdomain == "" {
		return AvailabilityFailed{Subdomain: subdomain, Err: ErrEmptySubdomain}
	}

	res, err := c.do(ctx, http.MethodGet, c.storefrontURL(subdomain), "application/json", nil)
	if err != nil {
		return AvailabilityFailed{Subdomain: subdomain, Err: err}
	}
	defer res.Body.Close()
	io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseSize))

	return AvailabilityUpdated{
		Subdomain: subdomain,
		Available: res.StatusCode != http.StatusOK,
	}
}

func (c *Client) Create(ctx context.Context, subdomain string) Action {
	if subdomain == "" {
		return StorefrontSaveFailed{Err: ErrEmptySubdomain}
	}

	var sf Storefront
	err := c.jsonRequest(ctx, http.MethodPost, c.BaseURL+"/api/storefronts", map[string]string{
		"subdomain": subdomain,
	}, &sf)
	if err == nil && sf.Subdomain == "" {
		err = errors.New("create storefront: response has no subdomain")
	}
	if err != nil {
		return StorefrontSaveFailed{Err: err}
	}
	return StorefrontSaved{Storefront: sf}
}

// UploadLogo sends the logo as the "file" field of a multipart form.
func (c *Client) UploadLogo(ctx context.Context, subdomain, name string, logo io.Reader) Action {
	if subdomain == "" {
		return LogoUploadFailed{Err: ErrEmptySubdomain}
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return LogoUploadFailed{Err: err}
	}
	_, err = io.Copy(fw, logo)
	if err != nil {
		return LogoUploadFailed{Err: errors.Wrap(err, "reading logo")}
	}
	err = mw.Close()
	if err != nil {
		return LogoUploadFailed{Err: err}
	}

	res, err := c.do(ctx, http.MethodPost, c.storefrontURL(subdomain)+"/uploads", mw.FormDataContentType(), body)
	if err != nil {
		return LogoUploadFailed{Err: err}
	}

	var out struct {
		URL string `json:"url"`
	}
	err = decode(res, &out)
	if err == nil && out.URL == "" {
		err = errors.New("upload logo: response has no url")
	}
	if err != nil {
		return LogoUploadFailed{Err: err}
	}
	return LogoUpdated{URL: out.URL, Name: name}
}

func (c *Client) SaveTheme(ctx context.Context, sf Storefront, theme Theme) Action {
	if sf.Subdomain == "" {
		return ThemeSaveFailed{Err: ErrEmptySubdomain}
	}

	var out struct {
		Theme *Theme `json:"theme"`
	}
	err := c.jsonRequest(ctx, http.MethodPatch, c.storefrontURL(sf.Subdomain), map[string]Theme{
		"theme": theme,
	}, &out)
	if err == nil && out.Theme == nil {
		err = errors.New("save theme: response has no theme")
	}
	if err != nil {
		return ThemeSaveFailed{Err: err}
	}
	return ThemeSaved{Theme: *out.Theme}
}

func (c *Client) SavePubkey(ctx context.Context, subdomain, pubkey string) Action {
	if subdomain == "" {
		return PubkeySaveFailed{Err: ErrEmptySubdomain}
	}

	var out Storefront
	err := c.jsonRequest(ctx, http.MethodPatch, c.storefrontURL(subdomain), map[string]string{
		"pubkey": pubkey,
	}, &out)
	if err != nil {
		return PubkeySaveFailed{Err: err}
	}
	return PubkeySaved{Storefront: out}
}

func (c *Client) storefrontURL(subdomain string) string {
	return c.BaseURL + "/api/storefronts/" + url.PathEscape(subdomain)
}

func (c *Client) jsonRequest(ctx context.Context, method, u string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	res, err := c.do(ctx, method, u, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	return decode(res, out)
}

func (c *Client) do(ctx context.Context, method, u, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	Log.Devf("%s %s", method, u)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, u)
	}
	return res, nil
}

// decode reads a JSON body into out. Non-2xx statuses are errors.
func decode(res *http.Response, out any) error {
	defer res.Body.Close()

	dat, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	Log.NetDevf("%s %s response: %s", res.Request.Method, res.Request.URL, dat)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errors.Errorf("%s %s: http status %d", res.Request.Method, res.Request.URL.Path, res.StatusCode)
	}
	err = json.Unmarshal(dat, out)
	return errors.Wrap(err, "invalid response")
}
