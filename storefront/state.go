package storefront

import (
	"fmt"
)

// State is the storefront editor state. The Err fields hold the last failure of each call and are
// cleared by its next success.
type State struct {
	Subdomain string
	Available *bool // nil until checked

	Storefront *Storefront
	Theme      Theme

	AvailabilityErr error
	SaveErr         error
	LogoErr         error
	ThemeErr        error
	PubkeyErr       error
}

// Apply returns the state after a. It panics on an action type it does not know.
func (s State) Apply(a Action) State {
	switch a := a.(type) {
	case AvailabilityUpdated:
		available := a.Available
		s.Subdomain = a.Subdomain
		s.Available = &available
		s.AvailabilityErr = nil
	case AvailabilityFailed:
		s.Subdomain = a.Subdomain
		s.Available = nil
		s.AvailabilityErr = a.Err
	case StorefrontSaved:
		sf := a.Storefront
		s.Storefront = &sf
		s.Subdomain = sf.Subdomain
		s.Theme = sf.Theme
		s.SaveErr = nil
	case StorefrontSaveFailed:
		s.SaveErr = a.Err
	case LogoUpdated:
		s.Theme.Logo.URL = a.URL
		s.Theme.Logo.Name = a.Name
		s.LogoErr = nil
	case LogoUploadFailed:
		s.LogoErr = a.Err
	case ThemeSaved:
		s.Theme = a.Theme
		if s.Storefront != nil {
			sf := *s.Storefront
			sf.Theme = a.Theme
			s.Storefront = &sf
		}
		s.ThemeErr = nil
	case ThemeSaveFailed:
		s.ThemeErr = a.Err
	case PubkeySaved:
		sf := a.Storefront
		s.Storefront = &sf
		s.PubkeyErr = nil
	case PubkeySaveFailed:
		s.PubkeyErr = a.Err
	default:
		panic(fmt.Errorf("unknown storefront action %T", a))
	}
	return s
}
