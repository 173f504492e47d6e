// Package command 提供 proprw 的命令行功能。
package command

import "github.com/lwmacct/251220-go-bin-proprw/internal/config"

// Defaults 默认配置 - 单一来源 (Single Source of Truth)
var Defaults = config.DefaultConfig()
