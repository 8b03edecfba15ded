package di_test

import (
	"errors"
	"testing"

	"github.com/gocrud/inject/catalog"
	"github.com/stretchr/testify/require"
)

const (
	Gold   catalog.Qualifier = "gold"
	Bronze catalog.Qualifier = "bronze"
	Silver catalog.Name      = "silver"
)

type Coin interface {
	Value() int
}

type GoldCoin struct {
	minted int
}

func (*GoldCoin) Value() int { return 100 }

type SilverCoin struct {
	minted int
}

func (*SilverCoin) Value() int { return 10 }

type CashImpl struct {
	Notes int
}

type Wallet struct {
	gold   Coin
	cash   *CashImpl
	silver Coin
}

func NewWallet(gold Coin, cash *CashImpl, silver Coin) *Wallet {
	return &Wallet{gold: gold, cash: cash, silver: silver}
}

type App struct {
	Wallet *Wallet `inject:""`
}

// 五层链路：A -> B -> C -> D -> E，C 与 D 都依赖 E
type (
	ChainE struct {
		ID int
	}
	ChainD struct {
		E *ChainE `inject:""`
	}
	ChainC struct {
		D *ChainD `inject:""`
		E *ChainE `inject:""`
	}
	ChainB struct {
		C *ChainC `inject:""`
	}
	ChainA struct {
		B *ChainB `inject:""`
	}
	ChainRoot struct {
		A *ChainA `inject:""`
	}
)

type (
	CycleA struct {
		B *CycleB `inject:""`
	}
	CycleB struct {
		A *CycleA `inject:""`
	}
	CtorCycleA struct {
		b *CtorCycleB
	}
	CtorCycleB struct {
		A *CtorCycleA `inject:""`
	}
)

func NewCtorCycleA(b *CtorCycleB) *CtorCycleA {
	return &CtorCycleA{b: b}
}

// Mint 同一返回类型的多个供应方法
type Mint struct {
	minted int
}

func (m *Mint) Primary() Coin {
	m.minted++
	return &GoldCoin{}
}

func (m *Mint) Backup() Coin {
	m.minted++
	return &SilverCoin{}
}

func (m *Mint) Cash() *CashImpl {
	m.minted++
	return &CashImpl{Notes: 3}
}

type Token struct {
	ID int
}

// Flaky 第一次调用返回 nil
type Flaky struct {
	calls int
}

func (f *Flaky) Token() *Token {
	f.calls++
	if f.calls == 1 {
		return nil
	}
	return &Token{ID: f.calls}
}

type TokenHolder struct {
	Token *Token `inject:""`
}

type OtherTokenSource struct{}

func (OtherTokenSource) Token() *Token { return &Token{ID: -1} }

type Purse struct {
	Coins []Coin
}

func (p *Purse) Add(c Coin) {
	p.Coins = append(p.Coins, c)
}

func (p *Purse) AddPair(a, b Coin) {
	p.Coins = append(p.Coins, a, b)
}

func (p *Purse) Fill(cash *CashImpl, silver Coin) error {
	if cash == nil {
		return errors.New("no cash")
	}
	p.Coins = append(p.Coins, silver)
	return nil
}

type (
	Base struct {
		Cash *CashImpl `inject:""`
	}
	Derived struct {
		Base
		Gold Coin `inject:"qualifier=gold"`
	}
)

type Secretive struct {
	coin Coin `inject:"name=silver"`
}

func (s *Secretive) Coin() Coin { return s.coin }

type Unregistered struct{}

type NeedsUnregistered struct {
	U *Unregistered `inject:""`
}

type NeedsPlainCoin struct {
	C Coin `inject:""`
}

type Broken struct{}

var errBoom = errors.New("boom")

func NewBroken() (*Broken, error) {
	return nil, errBoom
}

type Panicky struct{}

func NewPanicky() *Panicky {
	panic("kaboom")
}

// Settings 由 root 上的供应方法产出
type Settings struct {
	Prefix string
}

type ConfiguredRoot struct {
	prefix string
	Holder *SettingsHolder `inject:""`
}

func (r *ConfiguredRoot) Settings() *Settings {
	return &Settings{Prefix: r.prefix}
}

type SettingsHolder struct {
	Settings *Settings       `inject:""`
	Root     *ConfiguredRoot `inject:""`
}

func build(t *testing.T, register func(b *catalog.Builder)) catalog.Catalog {
	t.Helper()
	b := catalog.NewBuilder()
	register(b)
	c, err := b.Build()
	require.NoError(t, err)
	return c
}

func walletCatalog(t *testing.T) catalog.Catalog {
	return build(t, func(b *catalog.Builder) {
		catalog.Register[*GoldCoin](b, catalog.Singleton(), catalog.Qualify(Gold))
		catalog.Register[*CashImpl](b)
		catalog.Register[*SilverCoin](b, catalog.Singleton(), catalog.Named(Silver))
		catalog.Register[*Wallet](b, catalog.Singleton(), catalog.Constructor(NewWallet,
			catalog.Arg(0, catalog.QualifiedBy(Gold)),
			catalog.Arg(2, catalog.NamedBy(Silver)),
		))
		catalog.Register[*App](b)
	})
}
