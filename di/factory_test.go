package di_test

import (
	"testing"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNamedFactoriesAreIsolated(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*Mint](b, catalog.Singleton(),
			catalog.Factory("Primary", catalog.Produces("primary")),
			catalog.Factory("Backup", catalog.Produces("backup")),
			catalog.Factory("Cash"),
		)
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	primary, ok := di.GetNamed[Coin](inj, "primary")
	require.True(t, ok)
	backup, ok := di.GetNamed[Coin](inj, "backup")
	require.True(t, ok)
	assert.IsType(t, &GoldCoin{}, primary)
	assert.IsType(t, &SilverCoin{}, backup)

	// 命名产物不按返回类型缓存
	_, ok = di.Get[Coin](inj)
	assert.False(t, ok)

	cash, ok := di.Get[*CashImpl](inj)
	require.True(t, ok)
	assert.Equal(t, 3, cash.Notes)

	mint, ok := di.Get[*Mint](inj)
	require.True(t, ok)
	assert.Equal(t, 3, mint.minted)
}

func TestFactoryProductsAreSingletons(t *testing.T) {
	type consumer struct {
		Primary Coin      `inject:"name=primary"`
		Cash    *CashImpl `inject:""`
	}
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*Mint](b,
			catalog.Factory("Primary", catalog.Produces("primary")),
			catalog.Factory("Cash"),
		)
		catalog.Register[*consumer](b)
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	got, ok := di.Get[*consumer](inj)
	require.True(t, ok)
	primary, _ := di.GetNamed[Coin](inj, "primary")
	cash, _ := di.Get[*CashImpl](inj)
	assert.Same(t, primary, got.Primary)
	assert.Same(t, cash, got.Cash)

	mint, _ := di.Get[*Mint](inj)
	assert.Equal(t, 2, mint.minted)
}

func TestNilFactoryProductIsNotCached(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*Flaky](b, catalog.Factory("Token"))
		catalog.Register[*TokenHolder](b)
	})
	inj := di.New(c, di.WithLogger(logging.FromZap(zap.New(core))))
	require.NoError(t, inj.Inject(&App{}))

	holder, ok := di.Get[*TokenHolder](inj)
	require.True(t, ok)
	require.NotNil(t, holder.Token)

	token, ok := di.Get[*Token](inj)
	require.True(t, ok)
	assert.Same(t, holder.Token, token)

	flaky, ok := di.Get[*Flaky](inj)
	require.True(t, ok)
	assert.Equal(t, 2, flaky.calls)
	assert.Equal(t, 1, logs.FilterMessage("factory produced nil, not cached").Len())
}

func TestDuplicateUnnamedFactory(t *testing.T) {
	register := func(b *catalog.Builder) {
		catalog.Register[*Flaky](b, catalog.Factory("Token"))
		catalog.Register[OtherTokenSource](b, catalog.Factory("Token"))
	}

	err := di.New(build(t, register)).Inject(&App{})
	require.ErrorIs(t, err, di.ErrDuplicateFactory)
	assert.Contains(t, err.Error(), "Flaky.Token")
	assert.Contains(t, err.Error(), "OtherTokenSource.Token")
}

func TestDuplicateUnnamedFactoryFirstWins(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	register := func(b *catalog.Builder) {
		catalog.Register[OtherTokenSource](b, catalog.Factory("Token"))
		catalog.Register[*Flaky](b, catalog.Factory("Token"))
	}
	inj := di.New(build(t, register),
		di.WithLogger(logging.FromZap(zap.New(core))),
		di.WithSettings(di.Settings{FactoryPolicy: di.FactoryPolicyFirst}),
	)
	require.NoError(t, inj.Inject(&App{}))

	token, ok := di.Get[*Token](inj)
	require.True(t, ok)
	assert.Equal(t, -1, token.ID)
	assert.Equal(t, 1, logs.FilterMessage("duplicate factory ignored").Len())
}

func TestFactoryOnRoot(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*ConfiguredRoot](b, catalog.Factory("Settings"))
		catalog.Register[*SettingsHolder](b)
	})
	inj := di.New(c)
	root := &ConfiguredRoot{prefix: "app"}
	require.NoError(t, inj.Inject(root))

	require.NotNil(t, root.Holder)
	assert.Equal(t, "app", root.Holder.Settings.Prefix)
	assert.Same(t, root, root.Holder.Root)

	settings, ok := di.Get[*Settings](inj)
	require.True(t, ok)
	assert.Same(t, settings, root.Holder.Settings)
}

type Greeter struct {
	Greeting string
}

type GreeterSupplier struct {
	Cash *CashImpl `inject:""`
}

func (s *GreeterSupplier) Make(gold Coin, cash *CashImpl) *Greeter {
	if s.Cash != cash {
		return &Greeter{Greeting: "mismatch"}
	}
	if gold.Value() != 100 {
		return &Greeter{Greeting: "wrong coin"}
	}
	return &Greeter{Greeting: "hello"}
}

func TestFactoryParametersAreResolved(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
		catalog.Register[*CashImpl](b)
		catalog.Register[*GreeterSupplier](b, catalog.Factory("Make",
			catalog.FactoryArgs(catalog.Arg(0, catalog.QualifiedBy(Gold)))))
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	g, ok := di.Get[*Greeter](inj)
	require.True(t, ok)
	assert.Equal(t, "hello", g.Greeting)
}

type SelfFeeding struct {
	Token *Token `inject:""`
}

func (s *SelfFeeding) Make() *Token { return &Token{} }

func TestFactoryCycleThroughSupplier(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*SelfFeeding](b, catalog.Factory("Make"))
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrCircularDependency)
	assert.Contains(t, err.Error(), "*di_test.Token -> *di_test.SelfFeeding -> *di_test.Token")
}
