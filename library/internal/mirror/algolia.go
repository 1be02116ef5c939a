package mirror

import (
	"context"

	algolia "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/pkg/errors"

	cb "github.com/Astemirdum/library-circulation/pkg/circuit_breaker"
)

type AlgoliaConfig struct {
	AppID    string `yaml:"appId" envconfig:"ALGOLIA_APP_ID"`
	AdminKey string `yaml:"adminKey" envconfig:"ALGOLIA_ADMIN_KEY"`
	Index    string `yaml:"index" envconfig:"ALGOLIA_INDEX"`
}

func (cfg AlgoliaConfig) Enabled() bool {
	return cfg.AppID != "" && cfg.AdminKey != "" && cfg.Index != ""
}

// index is the part of *algolia.Index the mirror uses.
type index interface {
	SaveObject(object interface{}, opts ...interface{}) (algolia.SaveObjectRes, error)
	DeleteObject(objectID string, opts ...interface{}) (algolia.DeleteTaskRes, error)
}

type Algolia struct {
	index index
	cb    cb.CircuitBreaker
}

func NewAlgolia(cfg AlgoliaConfig, breaker cb.Config) (*Algolia, error) {
	if !cfg.Enabled() {
		return nil, errors.New("algolia: app id, admin key and index are required")
	}
	client := algolia.NewClient(cfg.AppID, cfg.AdminKey)
	return newAlgolia(client.InitIndex(cfg.Index), cb.New(breaker)), nil
}

func newAlgolia(idx index, breaker cb.CircuitBreaker) *Algolia {
	return &Algolia{index: idx, cb: breaker}
}

func (a *Algolia) Upsert(ctx context.Context, doc Document) error {
	return a.cb.Call(func() error {
		_, err := a.index.SaveObject(doc, ctx)
		return errors.Wrap(err, "algolia.SaveObject")
	})
}

func (a *Algolia) Delete(ctx context.Context, bookID int64) error {
	return a.cb.Call(func() error {
		_, err := a.index.DeleteObject(ObjectID(bookID), ctx)
		return errors.Wrap(err, "algolia.DeleteObject")
	})
}
