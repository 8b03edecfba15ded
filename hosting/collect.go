package hosting

import "github.com/gocrud/inject/di"

// Collect 按解析顺序返回注入器中实现了 HostedService 的实例
func Collect(inj *di.Injector) []HostedService {
	var services []HostedService
	for _, e := range inj.Instances() {
		if svc, ok := e.Instance.(HostedService); ok {
			services = append(services, svc)
		}
	}
	return services
}
