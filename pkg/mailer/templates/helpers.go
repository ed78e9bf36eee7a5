package templates

import (
	"github.com/rakapratama/go-admin-backend/config"
)

// Option pattern
type Option func(*EmailData)

func WithPassword(pw string) Option {
	return func(d *EmailData) { d.Password = pw }
}

func WithPasswordGenerated(gen bool) Option {
	return func(d *EmailData) { d.PasswordGenerated = gen }
}

func WithLoginURL(url string) Option {
	return func(d *EmailData) { d.LoginURL = url }
}

// NewWelcomeData fills the common branding fields from config, then
// applies the options.
func NewWelcomeData(cfg *config.Config, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,

		AppName:     titleCaser.String(cfg.AppName),
		CompanyName: cfg.CompanyName,
		LogoURL:     cfg.LogoURL,
		SupportURL:  cfg.SupportURL,

		LoginURL: cfg.LoginURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
