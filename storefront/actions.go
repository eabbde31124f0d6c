package storefront

// Action is the outcome of a storefront call. It is one of the types below.
type Action interface {
	isAction()
}

// AvailabilityUpdated reports whether a subdomain can be registered.
type AvailabilityUpdated struct {
	Subdomain string
	Available bool
}

type AvailabilityFailed struct {
	Subdomain string
	Err       error
}

type StorefrontSaved struct {
	Storefront Storefront
}

type StorefrontSaveFailed struct {
	Err error
}

type LogoUpdated struct {
	URL  string
	Name string
}

type LogoUploadFailed struct {
	Err error
}

type ThemeSaved struct {
	Theme Theme
}

type ThemeSaveFailed struct {
	Err error
}

type PubkeySaved struct {
	Storefront Storefront
}

type PubkeySaveFailed struct {
	Err error
}

func (AvailabilityUpdated) isAction()  {}
func (AvailabilityFailed) isAction()   {}
func (StorefrontSaved) isAction()      {}
func (StorefrontSaveFailed) isAction() {}
func (LogoUpdated) isAction()          {}
func (LogoUploadFailed) isAction()     {}
func (ThemeSaved) isAction()           {}
func (ThemeSaveFailed) isAction()      {}
func (PubkeySaved) isAction()          {}
func (PubkeySaveFailed) isAction()     {}
