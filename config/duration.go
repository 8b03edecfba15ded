package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 可从配置绑定的时长，接受 "5s"、"1h30m" 形式的字符串或纳秒数
type Duration time.Duration

// Std 返回 time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("config: invalid duration %v", v)
	}
	return nil
}
