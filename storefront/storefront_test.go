package storefront_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/virel-project/virel-social/storefront"

	"github.com/zeebo/assert"
)

// api is an in-memory storefront API.
type api struct {
	mut         sync.Mutex
	storefronts map[string]*storefront.Storefront
	uploads     map[string]string
}

func newAPI(t *testing.T) (*api, *storefront.Client) {
	a := &api{
		storefronts: make(map[string]*storefront.Storefront),
		uploads:     make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/storefronts", a.create)
	mux.HandleFunc("GET /api/storefronts/{subdomain}", a.get)
	mux.HandleFunc("PATCH /api/storefronts/{subdomain}", a.patch)
	mux.HandleFunc("POST /api/storefronts/{subdomain}/uploads", a.upload)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return a, storefront.New(ts.URL + "/")
}

func (a *api) create(w http.ResponseWriter, r *http.Request) {
	var in storefront.Storefront
	if json.NewDecoder(r.Body).Decode(&in) != nil || in.Subdomain == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	a.mut.Lock()
	defer a.mut.Unlock()
	if _, ok := a.storefronts[in.Subdomain]; ok {
		http.Error(w, "taken", http.StatusConflict)
		return
	}
	a.storefronts[in.Subdomain] = &in
	json.NewEncoder(w).Encode(in)
}

func (a *api) get(w http.ResponseWriter, r *http.Request) {
	a.mut.Lock()
	defer a.mut.Unlock()

	sf, ok := a.storefronts[r.PathValue("subdomain")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	json.NewEncoder(w).Encode(sf)
}

func (a *api) patch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Theme  *storefront.Theme `json:"theme"`
		Pubkey *string           `json:"pubkey"`
	}
	if json.NewDecoder(r.Body).Decode(&in) != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	a.mut.Lock()
	defer a.mut.Unlock()

	sf, ok := a.storefronts[r.PathValue("subdomain")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if in.Theme != nil {
		sf.Theme = *in.Theme
	}
	if in.Pubkey != nil {
		sf.Pubkey = *in.Pubkey
	}
	json.NewEncoder(w).Encode(sf)
}

func (a *api) upload(w http.ResponseWriter, r *http.Request) {
	f, h, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file", http.StatusBadRequest)
		return
	}
	defer f.Close()
	data, _ := io.ReadAll(f)

	a.mut.Lock()
	a.uploads[h.Filename] = string(data)
	a.mut.Unlock()

	json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example.com/" + h.Filename})
}

func TestStorefrontFlow(t *testing.T) {
	a, cl := newAPI(t)
	ctx := context.Background()
	var s storefront.State

	s = s.Apply(cl.CheckAvailability(ctx, "shop"))
	assert.NotNil(t, s.Available)
	assert.True(t, *s.Available)
	assert.Equal(t, s.Subdomain, "shop")

	s = s.Apply(cl.Create(ctx, "shop"))
	assert.NoError(t, s.SaveErr)
	assert.Equal(t, s.Storefront.Subdomain, "shop")

	s = s.Apply(cl.CheckAvailability(ctx, "shop"))
	assert.False(t, *s.Available)

	s = s.Apply(cl.Create(ctx, "shop"))
	assert.Error(t, s.SaveErr)
	assert.Equal(t, s.Storefront.Subdomain, "shop")

	s = s.Apply(cl.UploadLogo(ctx, "shop", "logo.png", strings.NewReader("png data")))
	assert.NoError(t, s.LogoErr)
	assert.Equal(t, s.Theme.Logo.URL, "https://cdn.example.com/logo.png")
	assert.Equal(t, a.uploads["logo.png"], "png data")

	theme := s.Theme
	theme.PrimaryColor = "#ff0000"
	s = s.Apply(cl.SaveTheme(ctx, *s.Storefront, theme))
	assert.NoError(t, s.ThemeErr)
	assert.Equal(t, s.Theme.PrimaryColor, "#ff0000")
	assert.Equal(t, s.Storefront.Theme.Logo.URL, "https://cdn.example.com/logo.png")
	assert.Equal(t, a.storefronts["shop"].Theme.PrimaryColor, "#ff0000")

	s = s.Apply(cl.SavePubkey(ctx, "shop", "pubkey1"))
	assert.NoError(t, s.PubkeyErr)
	assert.Equal(t, s.Storefront.Pubkey, "pubkey1")
	assert.Equal(t, s.Storefront.Theme.PrimaryColor, "#ff0000")
}

func TestStorefrontErrors(t *testing.T) {
	_, cl := newAPI(t)
	ctx := context.Background()
	var s storefront.State

	s = s.Apply(cl.SavePubkey(ctx, "missing", "pubkey1"))
	assert.Error(t, s.PubkeyErr)
	assert.Nil(t, s.Storefront)

	s = s.Apply(cl.SaveTheme(ctx, storefront.Storefront{Subdomain: "missing"}, storefront.Theme{}))
	assert.Error(t, s.ThemeErr)

	s = s.Apply(cl.UploadLogo(ctx, "", "logo.png", strings.NewReader("x")))
	assert.Equal(t, s.LogoErr, storefront.ErrEmptySubdomain)

	s = s.Apply(cl.CheckAvailability(ctx, ""))
	assert.Nil(t, s.Available)
	assert.Equal(t, s.AvailabilityErr, storefront.ErrEmptySubdomain)

	down := storefront.New("http://127.0.0.1:1")
	s = s.Apply(down.CheckAvailability(ctx, "shop"))
	assert.Error(t, s.AvailabilityErr)
	assert.Nil(t, s.Available)
}

func TestSaveThemeWithoutTheme(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"subdomain":"shop"}`))
	}))
	defer ts.Close()
	cl := storefront.New(ts.URL)

	s := storefront.State{
		Theme: storefront.Theme{PrimaryColor: "#00ff00"},
	}
	s = s.Apply(cl.SaveTheme(context.Background(), storefront.Storefront{Subdomain: "shop"}, storefront.Theme{PrimaryColor: "#ff0000"}))
	assert.Error(t, s.ThemeErr)
	assert.Equal(t, s.Theme.PrimaryColor, "#00ff00")
}

type unknownAction struct{ storefront.Action }

func TestApplyUnknown(t *testing.T) {
	defer func() {
		assert.NotNil(t, recover())
	}()
	storefront.State{}.Apply(unknownAction{})
	t.Fatal("no panic")
}
