package proprw

import (
	"errors"
	"log/slog"

	"github.com/lwmacct/251220-go-bin-proprw/internal/config"
	"github.com/lwmacct/251220-go-bin-proprw/pkg/profile"
)

// errNoSource 既未指定模板路径也未指定 profile
var errNoSource = errors.New("no template source: set --rewrite-source or --profile-name")

// job 一次改写的最终参数
type job struct {
	Source string
	Dest   string
	Rules  []string
	Atomic bool
}

// newJob 合并配置与 profile，显式配置的字段优先于 profile
func newJob(cfg *config.Config) (*job, error) {
	j := &job{
		Source: cfg.Rewrite.Source,
		Dest:   cfg.Rewrite.Dest,
		Rules:  cfg.Rewrite.Rules,
		Atomic: cfg.Rewrite.Atomic,
	}

	if cfg.Profile.Name != "" {
		catalog, err := profile.LoadCatalog(cfg.Profile.File)
		if err != nil {
			return nil, err
		}
		p, err := catalog.Get(cfg.Profile.Name)
		if err != nil {
			return nil, err
		}
		slog.Debug("Using profile", "name", p.Name, "source", p.Source, "rules", len(p.Rules))

		if j.Source == "" {
			j.Source = p.Source
		}
		if j.Dest == "" {
			j.Dest = p.Dest
		}
		if len(j.Rules) == 0 {
			j.Rules = p.Rules
		}
		// profile 只能关闭原子写入，需要开启时在 profile 文件中覆盖 atomic
		if p.Atomic != nil && !*p.Atomic {
			j.Atomic = false
		}
	}

	if j.Source == "" {
		return nil, errNoSource
	}
	if j.Dest == "" {
		j.Dest = j.Source
	}

	return j, nil
}
