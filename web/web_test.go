package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/catalog"
	"github.com/gocrud/inject/config"
	"github.com/gocrud/inject/di"
	"github.com/gocrud/inject/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Greeter struct {
	Greeting string
}

type HelloController struct {
	Greeter *Greeter `inject:""`
}

func (h *HelloController) MountRoutes(router gin.IRouter) {
	router.GET("/hello/:name", func(c *gin.Context) {
		c.String(http.StatusOK, h.Greeter.Greeting+", "+c.Param("name"))
	})
}

type Root struct {
	Server *web.Server `inject:""`
}

func newGreeter() *Greeter { return &Greeter{Greeting: "hello"} }

func inject(t *testing.T, opts []di.Option, register func(b *catalog.Builder)) (*di.Injector, *Root) {
	t.Helper()
	b := catalog.NewBuilder()
	register(b)
	catalog.Register[*Root](b)
	c, err := b.Build()
	require.NoError(t, err)

	inj := di.New(c, opts...)
	root := &Root{}
	require.NoError(t, inj.Inject(root))
	return inj, root
}

func serve(s *web.Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestControllersAreMounted(t *testing.T) {
	inj, root := inject(t, nil, func(b *catalog.Builder) {
		require.NoError(t, web.Register(b, web.WithMode(gin.TestMode)))
		catalog.Register[*Greeter](b, catalog.Constructor(newGreeter))
		web.RegisterController[*HelloController](b)
	})

	require.NotNil(t, root.Server)
	assert.Equal(t, 1, web.MountControllers(root.Server, inj))
	// 重复挂载不会注册重复路由
	assert.Equal(t, 1, web.MountControllers(root.Server, inj))

	w := serve(root.Server, http.MethodGet, "/hello/gopher")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello, gopher", w.Body.String())

	engine, ok := di.Get[*gin.Engine](inj)
	require.True(t, ok)
	assert.Same(t, root.Server.Engine(), engine)
}

func TestDiagnostics(t *testing.T) {
	reg := prometheus.NewRegistry()
	inj, root := inject(t, []di.Option{di.WithMetrics(reg)}, func(b *catalog.Builder) {
		require.NoError(t, web.Register(b, web.WithMode(gin.TestMode), web.WithDiagnostics()))
	})
	assert.True(t, root.Server.Options().Diagnostics)
	web.MountDiagnostics(root.Server.Engine(), inj, reg)

	w := serve(root.Server, http.MethodGet, "/debug/inject")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Injected  bool               `json:"injected"`
		Instances []web.InstanceView `json:"instances"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Injected)

	types := make([]string, 0, len(body.Instances))
	for _, v := range body.Instances {
		types = append(types, v.Type)
	}
	assert.Contains(t, types, "*web.Server")
	assert.Contains(t, types, "*web_test.Root")

	w = serve(root.Server, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "inject_instances_total")
}

func TestServerStartAndStop(t *testing.T) {
	_, root := inject(t, nil, func(b *catalog.Builder) {
		require.NoError(t, web.Register(b, web.WithMode(gin.TestMode), web.WithAddr("127.0.0.1:0"),
			web.WithMiddleware(func(c *gin.Context) { c.Header("X-Served-By", "inject") })))
	})
	root.Server.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	done := make(chan error, 1)
	go func() { done <- root.Server.Start(context.Background()) }()
	require.Eventually(t, func() bool { return root.Server.Address() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + root.Server.Address() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
	assert.Equal(t, "inject", resp.Header.Get("X-Served-By"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, root.Server.Stop(ctx))
	require.NoError(t, <-done)
}

func TestRegisterValidation(t *testing.T) {
	assert.ErrorContains(t, web.Register(catalog.NewBuilder(), web.WithMode("turbo")), "turbo")
	assert.ErrorContains(t, web.Register(catalog.NewBuilder(), web.WithAddr("")), "address")

	cfg, err := config.NewConfigurationBuilder().AddInMemory(map[string]any{
		"web": map[string]any{"addr": ":9090", "mode": "test", "readTimeout": "5s"},
	}).Build()
	require.NoError(t, err)

	b := catalog.NewBuilder()
	require.NoError(t, web.Register(b, web.FromConfiguration(cfg, "web")))
	c, err := b.Build()
	require.NoError(t, err)
	inj := di.New(c)
	require.NoError(t, inj.Inject(&struct{ Name string }{}))

	s, ok := di.Get[*web.Server](inj)
	require.True(t, ok)
	assert.Equal(t, ":9090", s.Options().Addr)
	assert.Equal(t, 5*time.Second, s.Options().ReadTimeout.Std())
}
