// Package storefront is a client of the storefront API of the marketplace: subdomain registration,
// theme, logo and owner key. Every call returns an Action that State.Apply folds into the editor state.
package storefront

import (
	"github.com/virel-project/virel-social/logger"
)

var Log = logger.DiscardLog

type Storefront struct {
	Subdomain string `json:"subdomain"`
	Pubkey    string `json:"pubkey,omitempty"`
	Theme     Theme  `json:"theme"`
}

type Theme struct {
	PrimaryColor    string `json:"primaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TitleFont       string `json:"titleFont,omitempty"`
	TextFont        string `json:"textFont,omitempty"`
	Logo            Logo   `json:"logo"`
}

type Logo struct {
	URL  string `json:"url,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}
