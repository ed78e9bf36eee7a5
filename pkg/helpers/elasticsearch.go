package helpers

import (
	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient initializes an elasticsearch client.
func NewESClient(addresses []string, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
}
