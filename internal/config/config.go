// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - DefaultPaths(appName) 中找到的第一个文件
//  3. 环境变量 - PROPRW_ 前缀，如 PROPRW_REWRITE_SOURCE
//  4. CLI flags - 仅用户明确指定的 flag
package config

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251220-go-bin-proprw/pkg/config"
)

// EnvPrefix 应用配置的环境变量前缀
const EnvPrefix = "PROPRW_"

// Config 应用配置
type Config struct {
	Rewrite RewriteConfig `koanf:"rewrite" desc:"改写配置"`
	Profile ProfileConfig `koanf:"profile" desc:"profile 配置, 为改写提供默认的源文件、目标文件和规则"`
}

// RewriteConfig 改写配置
type RewriteConfig struct {
	Source string   `koanf:"source" desc:"模板文件路径"`
	Dest   string   `koanf:"dest" desc:"输出文件路径, 为空时原地改写"`
	Rules  []string `koanf:"rules" desc:"有序替换规则, TOKEN=ENV 或 TOKEN={{模板}}"`
	Atomic bool     `koanf:"atomic" desc:"通过临时文件 + rename 写入"`
	DryRun bool     `koanf:"dry_run" desc:"仅输出改写结果, 不写文件"`
}

// ProfileConfig profile 配置
type ProfileConfig struct {
	Name string `koanf:"name" desc:"profile 名称, 如 kcl-consumer"`
	File string `koanf:"file" desc:"额外的 profile 文件 (YAML 或 JSON)"`
}

// DefaultConfig 返回默认配置
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Rewrite: RewriteConfig{
			Rules:  []string{},
			Atomic: true,
		},
	}
}

// Load 加载应用配置
func Load(cmd *cli.Command, appName string, opts ...config.Option) (*Config, error) {
	return config.Load(
		DefaultConfig(),
		append([]config.Option{
			config.WithConfigPaths(config.DefaultPaths(appName)...),
			config.WithEnvPrefix(EnvPrefix),
			config.WithEnvBindKey("envbind"),
			config.WithCommand(cmd),
		}, opts...)...,
	)
}
