package config

// Load 加载并绑定指定节的配置到结构体 T；section 为空时绑定整个配置
func Load[T any](cfg Configuration, section string) (T, error) {
	var t T
	err := cfg.Bind(section, &t)
	return t, err
}

// LoadOr 以 def 为默认值绑定配置节；配置节不存在时直接返回 def
func LoadOr[T any](cfg Configuration, section string, def T) (T, error) {
	if section != "" && !cfg.Exists(section) {
		return def, nil
	}
	t := def
	if err := cfg.Bind(section, &t); err != nil {
		return def, err
	}
	return t, nil
}
