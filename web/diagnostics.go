package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/inject/di"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InstanceView /debug/inject 返回的一条实例记录
type InstanceView struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
}

// MountControllers 挂载注入器中全部实现了 Controller 的实例，返回挂载数量
func MountControllers(s *Server, inj *di.Injector) int {
	var controllers []Controller
	for _, e := range inj.Instances() {
		if c, ok := e.Instance.(Controller); ok {
			controllers = append(controllers, c)
		}
	}
	s.Mount(controllers...)
	return len(controllers)
}

// MountDiagnostics 挂载 GET /debug/inject（实例缓存快照）与 GET /metrics。
// gatherer 为 nil 时不挂载 /metrics。
func MountDiagnostics(router gin.IRouter, inj *di.Injector, gatherer prometheus.Gatherer) {
	router.GET("/debug/inject", func(c *gin.Context) {
		entries := inj.Instances()
		views := make([]InstanceView, 0, len(entries))
		for _, e := range entries {
			views = append(views, InstanceView{
				Type:   fmt.Sprint(e.Type),
				Name:   string(e.Name),
				Source: string(e.Source),
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"injected":  inj.Injected(),
			"instances": views,
		})
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
