package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// Option 加载选项
type Option func(*options)

type options struct {
	configPaths []string
	envPrefix   string
	envBindKey  string
	envBindings map[string]string
	cmd         *cli.Command
}

// WithConfigPaths 设置配置文件搜索路径，按顺序查找，找到第一个即停止
func WithConfigPaths(paths ...string) Option {
	return func(o *options) { o.configPaths = append(o.configPaths, paths...) }
}

// WithEnvPrefix 启用带前缀的环境变量，如 "PROPRW_"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// WithEnvBindKey 指定配置文件中环境变量绑定表所在的 key，如 "envbind"
func WithEnvBindKey(key string) Option {
	return func(o *options) { o.envBindKey = key }
}

// WithEnvBinding 将环境变量直接绑定到 koanf key
func WithEnvBinding(envName, koanfKey string) Option {
	return func(o *options) {
		if o.envBindings == nil {
			o.envBindings = make(map[string]string)
		}
		o.envBindings[envName] = koanfKey
	}
}

// WithEnvBindings 批量绑定环境变量，key 为环境变量名，value 为 koanf key
func WithEnvBindings(bindings map[string]string) Option {
	return func(o *options) {
		for envName, koanfKey := range bindings {
			WithEnvBinding(envName, koanfKey)(o)
		}
	}
}

// WithCommand 使用 CLI flags 覆盖配置 (最高优先级)
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) { o.cmd = cmd }
}

// DefaultPaths 返回默认配置文件搜索路径。
// appName 可选，提供时追加 .<app>.yaml、用户主目录和系统配置目录。
func DefaultPaths(appName ...string) []string {
	paths := []string{
		"config.yaml",
		"config/config.yaml",
	}

	if len(appName) == 0 || appName[0] == "" {
		return paths
	}

	name := appName[0]
	paths = append(paths, "."+name+".yaml")
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+name+".yaml"))
	}
	paths = append(paths, "/etc/"+name+"/config.yaml")

	return paths
}

// ParserForPath 按扩展名选择解析器，.json 使用 JSON，其余按 YAML 处理
func ParserForPath(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Parser()
	}
	return yaml.Parser()
}

// Load 按优先级合并默认值、配置文件、环境变量和 CLI flags。
//
// 泛型参数 T 为配置结构体类型，字段必须使用 koanf 标签。
func Load[T any](defaultConfig T, opts ...Option) (*T, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	// 1️⃣ 默认值
	if err := k.Load(structs.Provider(defaultConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// 2️⃣ 配置文件
	loaded := false
	for _, path := range o.configPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), ParserForPath(path)); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		slog.Debug("Loaded config from file", "path", path)
		loaded = true
		break
	}
	if !loaded && len(o.configPaths) > 0 {
		slog.Debug("No config file found, using defaults")
	}

	sliceKeys := collectSliceKeys(defaultConfig)

	// 3️⃣ 环境变量(前缀)
	if o.envPrefix != "" {
		if err := loadEnvPrefix(k, o.envPrefix, collectKoanfKeys(defaultConfig), sliceKeys); err != nil {
			return nil, err
		}
	}

	// 4️⃣ 环境变量(绑定)：配置文件绑定在前，代码绑定在后
	bindings := make(map[string]string)
	if o.envBindKey != "" {
		for envName, koanfKey := range k.StringMap(o.envBindKey) {
			bindings[envName] = koanfKey
		}
		k.Delete(o.envBindKey)
	}
	for envName, koanfKey := range o.envBindings {
		bindings[envName] = koanfKey
	}
	if err := loadEnvBindings(k, bindings, sliceKeys); err != nil {
		return nil, err
	}

	// 5️⃣ CLI flags
	if o.cmd != nil {
		applyCLIFlags(o.cmd, k, defaultConfig)
	}

	var cfg T
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
