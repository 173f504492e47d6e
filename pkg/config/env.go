package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// envKeyDecoder 将带前缀的环境变量名转换为 koanf key：MYAPP_SERVER_URL → server.url
func envKeyDecoder(prefix string) func(string) string {
	return func(name string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, prefix)), "_", ".")
	}
}

// generateEnvBindings 为 koanf key 生成环境变量名，. 和 - 都转为 _。
//
// 解决 rewrite.dry_run 这类 key 无法由 envKeyDecoder 反推的问题。
func generateEnvBindings(prefix string, koanfKeys []string) map[string]string {
	r := strings.NewReplacer(".", "_", "-", "_")
	bindings := make(map[string]string, len(koanfKeys))
	for _, key := range koanfKeys {
		bindings[prefix+strings.ToUpper(r.Replace(key))] = key
	}
	return bindings
}

// collectKoanfKeys 递归收集结构体的全部叶子 koanf key
func collectKoanfKeys(cfg any) []string {
	var keys []string
	walkFields(reflect.TypeOf(cfg), "", func(key string, _ reflect.Type) {
		keys = append(keys, key)
	})
	return keys
}

// collectSliceKeys 收集切片类型字段的 koanf key，环境变量值按逗号拆分
func collectSliceKeys(cfg any) map[string]bool {
	keys := make(map[string]bool)
	walkFields(reflect.TypeOf(cfg), "", func(key string, typ reflect.Type) {
		if typ.Kind() == reflect.Slice {
			keys[key] = true
		}
	})
	return keys
}

func walkFields(typ reflect.Type, prefix string, fn func(key string, typ reflect.Type)) {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}

	for i := range typ.NumField() {
		field := typ.Field(i)
		key := field.Tag.Get("koanf")
		if key == "" || key == "-" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		if isNestedStruct(field.Type) {
			walkFields(field.Type, key, fn)
			continue
		}
		fn(key, field.Type)
	}
}

// isNestedStruct 判断字段是否需要递归，time.Duration / time.Time 视为叶子
func isNestedStruct(typ reflect.Type) bool {
	return typ.Kind() == reflect.Struct &&
		typ != reflect.TypeFor[time.Duration]() &&
		typ != reflect.TypeFor[time.Time]()
}

// envValue 切片字段按逗号拆分，其余原样交给 koanf 做弱类型转换
func envValue(key, value string, sliceKeys map[string]bool) any {
	if !sliceKeys[key] {
		return value
	}
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// loadEnvPrefix 加载带前缀的环境变量，已知 key 优先使用自动绑定
func loadEnvPrefix(k *koanf.Koanf, prefix string, koanfKeys []string, sliceKeys map[string]bool) error {
	auto := generateEnvBindings(prefix, koanfKeys)
	decode := envKeyDecoder(prefix)

	values := make(map[string]any)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		key, known := auto[name]
		if !known {
			key = decode(name)
		}
		values[key] = envValue(key, value, sliceKeys)
	}

	if len(values) == 0 {
		return nil
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("failed to load env with prefix %s: %w", prefix, err)
	}
	return nil
}

// loadEnvBindings 加载直接绑定的环境变量，未设置的变量跳过
func loadEnvBindings(k *koanf.Koanf, bindings map[string]string, sliceKeys map[string]bool) error {
	values := make(map[string]any)
	for envName, koanfKey := range bindings {
		if value, ok := os.LookupEnv(envName); ok {
			values[koanfKey] = envValue(koanfKey, value, sliceKeys)
		}
	}

	if len(values) == 0 {
		return nil
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("failed to load env bindings: %w", err)
	}
	return nil
}
