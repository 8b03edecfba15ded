package di_test

import (
	"testing"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircularDependencyFields(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*CycleA](b)
		catalog.Register[*CycleB](b)
	})
	inj := di.New(c)

	err := inj.Inject(&App{})
	require.ErrorIs(t, err, di.ErrCircularDependency)
	assert.Contains(t, err.Error(), "*di_test.CycleA -> *di_test.CycleB -> *di_test.CycleA")

	_, ok := di.Get[*CycleA](inj)
	assert.False(t, ok)
}

func TestCircularDependencyConstructor(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*CtorCycleA](b, catalog.Constructor(NewCtorCycleA))
		catalog.Register[*CtorCycleB](b)
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrCircularDependency)
	assert.Contains(t, err.Error(), "CtorCycleA")
	assert.Contains(t, err.Error(), "CtorCycleB")
}

type Owner struct {
	Label  string
	helper *Helper
}

func NewOwner() *Owner { return &Owner{Label: "owner"} }

func (o *Owner) SetHelper(h *Helper) { o.helper = h }

type Helper struct {
	Owner *Owner `inject:""`
}

type SelfAware struct {
	Self *SelfAware `inject:""`
}

func TestConstructedInstanceVisibleToItsMembers(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*Owner](b, catalog.Singleton(),
			catalog.Constructor(NewOwner),
			catalog.Setter("SetHelper", catalog.Markers{}))
		catalog.Register[*Helper](b)
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	owner, ok := di.Get[*Owner](inj)
	require.True(t, ok)
	require.NotNil(t, owner.helper)
	assert.Same(t, owner, owner.helper.Owner)

	helper, ok := di.Get[*Helper](inj)
	require.True(t, ok)
	assert.Same(t, owner.helper, helper)
}

func TestDefaultConstructedSelfReferenceIsCycle(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*SelfAware](b, catalog.Singleton())
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrCircularDependency)
	assert.Contains(t, err.Error(), "di: 循环依赖: *di_test.SelfAware -> *di_test.SelfAware")
}

func TestQualifierResolution(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
		catalog.Register[*CashImpl](b)
		catalog.Register[*Derived](b)
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	d, ok := di.Get[*Derived](inj)
	require.True(t, ok)
	gold, ok := di.Get[*GoldCoin](inj)
	require.True(t, ok)
	assert.Same(t, gold, d.Gold)
	assert.NotNil(t, d.Cash)
}

func TestUnboundQualifier(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		b.Declare(Bronze)
		catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrUnboundQualifier)
	assert.Contains(t, err.Error(), "bronze")
}

func TestUnboundQualifierOnlyAbstractImplementor(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Qualify(Gold), catalog.Abstract())
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrUnboundQualifier)
}

func TestAmbiguousQualifier(t *testing.T) {
	orders := map[string]func(b *catalog.Builder){
		"gold first": func(b *catalog.Builder) {
			catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
			catalog.Register[*SilverCoin](b, catalog.Qualify(Gold))
		},
		"silver first": func(b *catalog.Builder) {
			catalog.Register[*SilverCoin](b, catalog.Qualify(Gold))
			catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
		},
	}
	for name, register := range orders {
		err := di.New(build(t, register)).Inject(&App{})
		require.ErrorIs(t, err, di.ErrAmbiguousQualifier, name)
		assert.Contains(t, err.Error(), "GoldCoin", name)
		assert.Contains(t, err.Error(), "SilverCoin", name)
	}
}

func TestDuplicateName(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Named("coin"))
		catalog.Register[*SilverCoin](b, catalog.Named("coin"))
	})
	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrDuplicateName)
	assert.Contains(t, err.Error(), "coin")

	c = build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Named("primary"))
		catalog.Register[*Mint](b, catalog.Factory("Primary", catalog.Produces("primary")))
	})
	err = di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrDuplicateName)
}

func TestDistinctNamesNeverCollide(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Named("coin-a"))
		catalog.Register[*SilverCoin](b, catalog.Named("coin-b"))
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	a, ok := di.GetNamed[Coin](inj, "coin-a")
	require.True(t, ok)
	b, ok := di.GetNamed[Coin](inj, "coin-b")
	require.True(t, ok)
	assert.Equal(t, 100, a.Value())
	assert.Equal(t, 10, b.Value())
}

func TestUnresolvableAbstractType(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
		catalog.Register[*NeedsPlainCoin](b)
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrUnresolvableAbstractType)
	assert.Contains(t, err.Error(), "di_test.Coin")
}

func TestAbstractTypeNeverInstantiated(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*Base](b, catalog.Abstract(), catalog.Singleton())
		catalog.Register[*CashImpl](b)
		catalog.Register[Coin](b)
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	_, ok := di.Get[*Base](inj)
	assert.False(t, ok)
}

func TestUnknownType(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*NeedsUnregistered](b)
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrUnknownType)
	assert.Contains(t, err.Error(), "NeedsUnregistered.U")
}

func TestUnboundName(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*Secretive](b)
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrUnboundName)
	assert.Contains(t, err.Error(), "silver")
}

func TestUnexportedFieldInjection(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*SilverCoin](b, catalog.Named(Silver))
		catalog.Register[*Secretive](b)
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	s, ok := di.Get[*Secretive](inj)
	require.True(t, ok)
	silver, _ := di.Get[*SilverCoin](inj)
	assert.Same(t, silver, s.Coin())
}

type Overridden struct {
	Coin  *GoldCoin `inject:"qualifier=gold"`
	Named Coin      `inject:"name=silver,qualifier=gold"`
}

func TestMarkerPrecedence(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
		catalog.Register[*SilverCoin](b, catalog.Named(Silver))
		catalog.Register[*Overridden](b)
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	o, ok := di.Get[*Overridden](inj)
	require.True(t, ok)
	gold, _ := di.Get[*GoldCoin](inj)
	silver, _ := di.Get[*SilverCoin](inj)
	assert.Same(t, gold, o.Coin)
	assert.Same(t, silver, o.Named)
}

func TestMarkerTargetNotAssignable(t *testing.T) {
	type wrongType struct {
		Coin *GoldCoin `inject:"name=silver"`
	}
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*SilverCoin](b, catalog.Named(Silver))
		catalog.Register[*wrongType](b)
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrInvalidInjectionTarget)
}

func TestMethodInjection(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
		catalog.Register[*SilverCoin](b, catalog.Named(Silver))
		catalog.Register[*CashImpl](b)
		catalog.Register[*Purse](b,
			catalog.Setter("Add", catalog.QualifiedBy(Gold)),
			catalog.Setter("Fill", catalog.Markers{}, catalog.Arg(1, catalog.NamedBy(Silver))),
		)
	})
	inj := di.New(c)
	require.NoError(t, inj.Inject(&App{}))

	p, ok := di.Get[*Purse](inj)
	require.True(t, ok)
	require.Len(t, p.Coins, 2)
	assert.Equal(t, 100, p.Coins[0].Value())
	assert.Equal(t, 10, p.Coins[1].Value())
}

func TestMethodMarkerRequiresSingleParameter(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Qualify(Gold))
		catalog.Register[*Purse](b, catalog.Setter("AddPair", catalog.QualifiedBy(Gold)))
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrInvalidInjectionTarget)
	assert.Contains(t, err.Error(), "AddPair")
}

func TestMultipleInjectableConstructors(t *testing.T) {
	ctor := catalog.ConstructorDescriptor{
		Injectable: true,
		New:        func([]any) (any, error) { return &CashImpl{}, nil },
	}
	desc := &catalog.TypeDescriptor{
		Type:         catalog.TypeOf[*CashImpl](),
		Singleton:    true,
		Constructors: []catalog.ConstructorDescriptor{ctor, ctor},
	}

	err := di.New(catalog.New([]*catalog.TypeDescriptor{desc})).Inject(&App{})
	require.ErrorIs(t, err, di.ErrInvalidInjectionTarget)
}

func TestConstructorError(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*Broken](b, catalog.Singleton(), catalog.Constructor(NewBroken))
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrConstructionFailure)
	require.ErrorIs(t, err, errBoom)
}

func TestConstructorPanic(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*Panicky](b, catalog.Singleton(), catalog.Constructor(NewPanicky))
	})

	err := di.New(c).Inject(&App{})
	require.ErrorIs(t, err, di.ErrConstructionFailure)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestNoConstructionPath(t *testing.T) {
	desc := &catalog.TypeDescriptor{
		Type:      catalog.TypeOf[*CashImpl](),
		Singleton: true,
	}

	err := di.New(catalog.New([]*catalog.TypeDescriptor{desc})).Inject(&App{})
	require.ErrorIs(t, err, di.ErrConstructionFailure)
}

func TestResolutionTooDeep(t *testing.T) {
	c := build(t, func(b *catalog.Builder) {
		catalog.Register[*ChainA](b)
		catalog.Register[*ChainB](b)
		catalog.Register[*ChainC](b)
		catalog.Register[*ChainD](b)
		catalog.Register[*ChainE](b)
	})
	inj := di.New(c, di.WithSettings(di.Settings{MaxDepth: 2}))

	err := inj.Inject(&App{})
	require.ErrorIs(t, err, di.ErrResolutionTooDeep)
}

func TestInvalidSettingsDoNotSpendInjector(t *testing.T) {
	inj := di.New(walletCatalog(t), di.WithSettings(di.Settings{FactoryPolicy: "random"}))
	require.Error(t, inj.Inject(&App{}))
	assert.False(t, inj.Injected())
}
