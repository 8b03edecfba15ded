package main

import (
	"errors"
	"fmt"

	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/di"
)

type Endpoint struct {
	URL string
}

// Endpoints 供应者：同一返回类型按名称区分
type Endpoints struct {
	Base string
}

func (e *Endpoints) Primary() *Endpoint { return &Endpoint{URL: e.Base + "/primary"} }

func (e *Endpoints) Replica() *Endpoint { return &Endpoint{URL: e.Base + "/replica"} }

// Client 依赖两个命名端点
type Client struct {
	Primary *Endpoint `inject:"name=primary"`
	Replica *Endpoint `inject:"name=replica"`
}

type A struct {
	B *B `inject:""`
}

type B struct {
	A *A `inject:""`
}

func main() {
	b := catalog.NewBuilder()
	catalog.Register[*Endpoints](b, catalog.Singleton(),
		catalog.Constructor(func() *Endpoints { return &Endpoints{Base: "http://localhost"} }),
		catalog.Factory("Primary", catalog.Produces("primary")),
		catalog.Factory("Replica", catalog.Produces("replica")),
	)
	catalog.Register[*Client](b)
	c, err := b.Build()
	if err != nil {
		panic(err)
	}

	inj := di.New(c)
	if err := inj.Inject(&struct{}{}); err != nil {
		panic(err)
	}
	client, _ := di.Get[*Client](inj)
	fmt.Println(client.Primary.URL, client.Replica.URL)

	// 循环依赖
	b = catalog.NewBuilder()
	catalog.Register[*A](b)
	catalog.Register[*B](b)
	c, err = b.Build()
	if err != nil {
		panic(err)
	}
	err = di.New(c).Inject(&struct{}{})
	fmt.Println(errors.Is(err, di.ErrCircularDependency), err)
}
