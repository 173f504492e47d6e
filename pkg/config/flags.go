package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// flagName 将 koanf key 转为 kebab-case flag 名称：rewrite.dry_run → rewrite-dry-run
func flagName(koanfKey string) string {
	return strings.NewReplacer(".", "-", "_", "-").Replace(koanfKey)
}

// applyCLIFlags 通过反射将用户明确指定的 CLI flags 写入 koanf。
//
// 子命令可读取父命令上定义的 flag (urfave/cli v3 的 flag 查找会向上遍历)。
func applyCLIFlags(cmd *cli.Command, k *koanf.Koanf, defaultConfig any) {
	typ := reflect.TypeOf(defaultConfig)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	applyCLIFlagsRecursive(cmd, k, typ, "")
}

func applyCLIFlagsRecursive(cmd *cli.Command, k *koanf.Koanf, typ reflect.Type, prefix string) {
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
			applyCLIFlagsRecursive(cmd, k, field.Type, key)
			continue
		}

		name := flagName(key)
		if !cmd.IsSet(name) {
			continue
		}
		setCLIFlagValue(cmd, k, key, name, field.Type)
	}
}

// setCLIFlagValue 按字段类型读取 flag 值
func setCLIFlagValue(cmd *cli.Command, k *koanf.Koanf, key, name string, typ reflect.Type) {
	switch typ {
	case reflect.TypeFor[time.Duration]():
		_ = k.Set(key, cmd.Duration(name))
		return
	case reflect.TypeFor[time.Time]():
		_ = k.Set(key, cmd.Timestamp(name))
		return
	}

	switch typ.Kind() {
	case reflect.String:
		_ = k.Set(key, cmd.String(name))
	case reflect.Bool:
		_ = k.Set(key, cmd.Bool(name))
	case reflect.Int:
		_ = k.Set(key, cmd.Int(name))
	case reflect.Int64:
		_ = k.Set(key, cmd.Int64(name))
	case reflect.Uint:
		_ = k.Set(key, cmd.Uint(name))
	case reflect.Uint64:
		_ = k.Set(key, cmd.Uint64(name))
	case reflect.Float64:
		_ = k.Set(key, cmd.Float64(name))
	case reflect.Slice:
		switch typ.Elem().Kind() {
		case reflect.String:
			_ = k.Set(key, cmd.StringSlice(name))
		case reflect.Int:
			_ = k.Set(key, cmd.IntSlice(name))
		}
	case reflect.Map:
		if typ.Key().Kind() == reflect.String && typ.Elem().Kind() == reflect.String {
			_ = k.Set(key, cmd.StringMap(name))
		}
	}
}
