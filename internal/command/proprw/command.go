// Package proprw 提供 properties 模板改写命令。
package proprw

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251220-go-bin-proprw/internal/command"
	"github.com/lwmacct/251220-go-bin-proprw/internal/config"
	"github.com/lwmacct/251220-go-bin-proprw/pkg/envres"
	"github.com/lwmacct/251220-go-bin-proprw/pkg/rewrite"
)

// Command 根命令
var Command = New()

// New 创建根命令，测试中每次运行使用新的实例
func New() *cli.Command {
	return &cli.Command{
		Name:  "proprw",
		Usage: "使用环境变量替换 properties 模板中的占位符",
		// 规则中可能包含逗号，不按逗号拆分 --rewrite-rules
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rewrite-source",
				Aliases: []string{"s"},
				Value:   command.Defaults.Rewrite.Source,
				Usage:   "模板文件路径",
			},
			&cli.StringFlag{
				Name:    "rewrite-dest",
				Aliases: []string{"d"},
				Value:   command.Defaults.Rewrite.Dest,
				Usage:   "输出文件路径, 为空时原地改写",
			},
			&cli.StringSliceFlag{
				Name:    "rewrite-rules",
				Aliases: []string{"r"},
				Usage:   "替换规则 TOKEN=ENV 或 TOKEN={{模板}}, 可重复, 按顺序应用",
			},
			&cli.BoolFlag{
				Name:  "rewrite-atomic",
				Value: command.Defaults.Rewrite.Atomic,
				Usage: "通过临时文件 + rename 写入",
			},
			&cli.BoolFlag{
				Name:    "rewrite-dry-run",
				Aliases: []string{"n"},
				Value:   command.Defaults.Rewrite.DryRun,
				Usage:   "仅输出改写结果, 不写文件",
			},
			&cli.StringFlag{
				Name:    "profile-name",
				Aliases: []string{"p"},
				Value:   command.Defaults.Profile.Name,
				Usage:   "使用预定义 profile, 见 profiles 子命令",
			},
			&cli.StringFlag{
				Name:  "profile-file",
				Value: command.Defaults.Profile.File,
				Usage: "额外的 profile 文件 (YAML 或 JSON)",
			},
		},
		Action: action,
		Commands: []*cli.Command{
			version.Command,
			{
				Name:   "profiles",
				Usage:  "列出可用的 profile",
				Action: profilesAction,
			},
			{
				Name:   "example",
				Usage:  "输出带注释的配置示例",
				Action: exampleAction,
			},
			{
				Name:   "config",
				Usage:  "输出合并后的生效配置",
				Action: configAction,
			},
		},
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return err
	}

	j, err := newJob(cfg)
	if err != nil {
		return err
	}

	bindings, err := envres.ParseBindings(j.Rules)
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		slog.Warn("No rules configured, output will equal the template", "source", j.Source)
	}

	// 先解析全部环境变量，缺失时不会触碰任何文件
	rules, err := envres.Resolve(envres.FromEnviron(), bindings)
	if err != nil {
		return err
	}

	if cfg.Rewrite.DryRun {
		out, res, err := rewrite.Render(j.Source, rules)
		if err != nil {
			return err
		}
		slog.Debug("Rendered template", "source", res.Source, "replaced", res.Total())
		_, err = fmt.Fprint(cmd.Root().Writer, out)
		return err
	}

	res, err := rewrite.File(j.Source, j.Dest, rules, rewrite.WithAtomic(j.Atomic))
	if err != nil {
		return err
	}

	slog.Debug("Rewrote template",
		"source", res.Source,
		"dest", res.Dest,
		"rules", len(rules),
		"replaced", res.Total(),
		"bytes", res.Bytes,
	)
	for i, r := range rules {
		if res.Replaced[i] == 0 {
			slog.Debug("Token not found in template", "token", r.Token)
		}
	}

	return nil
}
