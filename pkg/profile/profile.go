// Package profile 提供预定义的改写 profile。
//
// 一个 profile 描述一次改写的源文件、目标文件和有序规则，
// 取代为每种部署场景各写一份几乎相同的脚本。
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/lwmacct/251220-go-bin-proprw/pkg/config"
)

//go:embed profiles.yaml
var builtin []byte

// ErrUnknownProfile 指定的 profile 不存在
var ErrUnknownProfile = errors.New("unknown profile")

// Profile 一组改写参数
type Profile struct {
	Name        string   `koanf:"-"`
	Description string   `koanf:"description"`
	Source      string   `koanf:"source"`
	Dest        string   `koanf:"dest"`
	Rules       []string `koanf:"rules"`

	// Atomic 为 nil 时沿用配置中的 rewrite.atomic
	Atomic *bool `koanf:"atomic"`
}

// Catalog profile 目录
type Catalog struct {
	profiles map[string]Profile
}

// LoadCatalog 加载内置 profile，并按顺序合并用户 profile 文件 (YAML 或 JSON)。
//
// 用户文件中的同名 profile 按字段覆盖内置值，rules 整体替换。
func LoadCatalog(files ...string) (*Catalog, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(builtin), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load builtin profiles: %w", err)
	}

	for _, path := range files {
		if path == "" {
			continue
		}
		if err := k.Load(file.Provider(path), config.ParserForPath(path)); err != nil {
			return nil, fmt.Errorf("failed to load profile file %s: %w", path, err)
		}
		slog.Debug("Loaded profiles from file", "path", path)
	}

	var profiles map[string]Profile
	if err := k.Unmarshal("profiles", &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
	}

	for name, p := range profiles {
		p.Name = name
		profiles[name] = p
	}

	return &Catalog{profiles: profiles}, nil
}

// Get 按名称获取 profile
func (c *Catalog) Get(name string) (Profile, error) {
	p, ok := c.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	return p, nil
}

// All 返回按名称排序的全部 profile
func (c *Catalog) All() []Profile {
	names := c.Names()
	all := make([]Profile, 0, len(names))
	for _, name := range names {
		all = append(all, c.profiles[name])
	}
	return all
}

// Names 返回排序后的 profile 名称
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
