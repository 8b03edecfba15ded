package mongodb_test

import (
	"context"
	"testing"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type Store struct {
	Client  *mongo.Client `inject:""`
	Archive *mongo.Client `inject:"name=mongodb.archive"`
}

func TestRegisterProvidesClients(t *testing.T) {
	b := catalog.NewBuilder()
	require.NoError(t, mongodb.Register(b,
		mongodb.WithClient("default", "mongodb://127.0.0.1:27017"),
		mongodb.WithClient("archive", "mongodb://127.0.0.1:27018", func(o *mongodb.Options) {
			o.MaxPoolSize = 10
			o.MinPoolSize = 1
		}),
	))
	catalog.Register[*Store](b)
	c, err := b.Build()
	require.NoError(t, err)

	inj := di.New(c)
	store := &Store{}
	require.NoError(t, inj.Inject(store))

	require.NotNil(t, store.Client)
	require.NotNil(t, store.Archive)
	assert.NotSame(t, store.Client, store.Archive)

	named, ok := di.GetNamed[*mongo.Client](inj, mongodb.Name("default"))
	require.True(t, ok)
	assert.Same(t, store.Client, named)

	factory, ok := di.Get[*mongodb.Factory](inj)
	require.True(t, ok)
	require.NoError(t, factory.Start(context.Background()))
	require.NoError(t, factory.Stop(context.Background()))
}

func TestInvalidURIFailsInjection(t *testing.T) {
	b := catalog.NewBuilder()
	require.NoError(t, mongodb.Register(b, mongodb.WithClient("default", "not-a-uri")))
	c, err := b.Build()
	require.NoError(t, err)

	err = di.New(c).Inject(&Store{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default")
}

func TestRegisterFromConfiguration(t *testing.T) {
	cfg, err := config.NewConfigurationBuilder().AddInMemory(map[string]any{
		"mongodb": map[string]any{
			"archive": map[string]any{"uri": "mongodb://archive:27017", "timeout": "3s"},
			"broken":  map[string]any{"minPoolSize": 10, "maxPoolSize": 2, "uri": "mongodb://x"},
		},
	}).Build()
	require.NoError(t, err)

	err = mongodb.Register(catalog.NewBuilder(), mongodb.FromConfiguration(cfg, "mongodb"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.NotContains(t, err.Error(), "archive")
}

func TestValidate(t *testing.T) {
	assert.Error(t, mongodb.NewDefaultOptions("", "mongodb://x").Validate())
	assert.Error(t, mongodb.NewDefaultOptions("a", "").Validate())
	assert.NoError(t, mongodb.NewDefaultOptions("a", "mongodb://x").Validate())
}
