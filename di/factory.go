package di

import (
	"fmt"
	"time"

	"github.com/gocrud/inject/logging"
)

// produce 调用供应方法。
// 供应者为 root 时直接在 root 上调用，否则先按常规路径解析供应者。
// 命名产物只按名称缓存；nil 产物不缓存，下次解析时会再次调用。
func (r *resolution) produce(fb factoryBinding) (any, error) {
	m := fb.method
	k := key{t: m.Product, name: m.Named}
	if inst, ok := r.cached(k); ok {
		return inst, nil
	}
	if err := r.enter(k); err != nil {
		return nil, err
	}
	defer r.leave()

	var supplier any
	if fb.supplier.Type == r.rootType {
		supplier = r.root
	} else {
		s, err := r.resolveType(fb.supplier.Type)
		if err != nil {
			return nil, err
		}
		supplier = s
	}

	args, err := r.resolveParams(m.Params)
	if err != nil {
		return nil, fmt.Errorf("供应方法 %v: %w", fb, err)
	}

	start := time.Now()
	inst, err := invoke(site("供应方法 "+fb.String()), func() (any, error) {
		return m.Invoke(supplier, args)
	})
	r.metrics.observe(start)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		r.logger.Warn("factory produced nil, not cached", logging.F("factory", fb.String()))
		return nil, nil
	}

	var stored bool
	if m.Named != "" {
		stored = r.store.putNamed(m.Named, m.Product, inst, SourceFactory)
	} else {
		stored = r.store.putType(m.Product, inst, SourceFactory, "")
	}
	if stored {
		r.metrics.cached(SourceFactory)
		r.logger.Debug("instance produced", logging.F("product", k.String()), logging.F("factory", fb.String()))
	}
	return inst, nil
}

func (r *resolution) cached(k key) (any, bool) {
	if k.name != "" {
		return r.store.getNamed(k.name)
	}
	return r.store.get(k.t)
}
