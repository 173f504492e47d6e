// Package config 提供分层配置加载。
//
// # 特性
//
// 使用泛型支持任意配置结构体类型，配置加载优先级 (从低到高)：
//  1. 默认值 - 通过 defaultConfig 参数传入
//  2. 配置文件 - 通过 [WithConfigPaths] 设置，找到第一个即停止
//  3. 环境变量(前缀) - 通过 [WithEnvPrefix] 启用
//  4. 环境变量(绑定) - 通过 [WithEnvBindKey](配置文件) 或 [WithEnvBinding](代码) 设置
//  5. CLI flags - 通过 [WithCommand] 设置，仅用户明确指定的 flag 生效
//
// # 快速开始
//
//	type Config struct {
//	    Source string   `koanf:"source" desc:"模板文件路径"`
//	    Rules  []string `koanf:"rules"  desc:"替换规则"`
//	}
//
//	cfg, err := config.Load(Config{Source: "app.properties"},
//	    config.WithConfigPaths(config.DefaultPaths("proprw")...),
//	    config.WithEnvPrefix("PROPRW_"),
//	    config.WithCommand(cmd),
//	)
//
// # 环境变量(前缀)
//
// 前缀 + 大写的 koanf key，点号 (.) 和连字符 (-) 都转为下划线 (_)：
//   - PROPRW_REWRITE_SOURCE → rewrite.source
//   - PROPRW_REWRITE_DRY_RUN → rewrite.dry_run
//
// 切片字段可使用逗号分隔：PROPRW_REWRITE_RULES="A=B,C=D"。
//
// # 环境变量(绑定)
//
//	# config.yaml
//	envbind:
//	  TEMPLATE_PATH: rewrite.source
//
// 代码中的绑定 ([WithEnvBinding]、[WithEnvBindings]) 优先级高于配置文件中的绑定。
// proprw 本身只使用配置文件绑定，代码绑定供调用方通过 internal/config.Load 的
// opts 或直接调用 [Load] 时传入。
//
// # CLI Flag 映射
//
// koanf key 中的 . 和 _ 转为 -：rewrite.dry_run → --rewrite-dry-run
//
// # 生成配置示例
//
// [ExampleYAML] 根据 desc 标签生成带注释的 YAML，[ConfigTestHelper] 在测试中写出示例文件并校验配置键。
package config
