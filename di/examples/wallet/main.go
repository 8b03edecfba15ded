package main

import (
	"fmt"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/logging"
)

const Gold catalog.Qualifier = "gold"

// 定义接口
type Coin interface {
	Value() int
}

// 实现
type GoldCoin struct{ value int }

func (c *GoldCoin) Value() int { return c.value }

type SilverCoin struct{ value int }

func (c *SilverCoin) Value() int { return c.value }

type Cash struct {
	Notes int
}

// 服务
type Wallet struct {
	Gold   Coin
	Cash   *Cash
	Silver Coin
}

func NewWallet(gold Coin, cash *Cash, silver Coin) *Wallet {
	return &Wallet{Gold: gold, Cash: cash, Silver: silver}
}

func (w *Wallet) Total() int {
	return w.Gold.Value() + w.Cash.Notes + w.Silver.Value()
}

type App struct {
	Wallet *Wallet `inject:""`
}

func main() {
	b := catalog.NewBuilder()
	catalog.Register[*GoldCoin](b, catalog.Singleton(), catalog.Qualify(Gold),
		catalog.Constructor(func() *GoldCoin { return &GoldCoin{value: 100} }))
	catalog.Register[*SilverCoin](b, catalog.Singleton(), catalog.Named("silver"),
		catalog.Constructor(func() *SilverCoin { return &SilverCoin{value: 10} }))
	catalog.Register[*Cash](b)
	catalog.Register[*Wallet](b, catalog.Singleton(), catalog.Constructor(NewWallet,
		catalog.Arg(0, catalog.QualifiedBy(Gold)),
		catalog.Arg(2, catalog.NamedBy("silver")),
	))
	catalog.Register[*App](b)

	c, err := b.Build()
	if err != nil {
		panic(err)
	}

	inj := di.New(c, di.WithLogger(logging.NewLogger()))
	app := &App{}
	if err := inj.Inject(app); err != nil {
		panic(err)
	}

	fmt.Println("wallet total:", app.Wallet.Total())

	silver, _ := di.GetNamed[Coin](inj, "silver")
	fmt.Println("silver:", silver.Value())
}
