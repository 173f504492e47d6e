package proprw

import (
	"context"
	"fmt"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251220-go-bin-proprw/internal/config"
	pkgconfig "github.com/lwmacct/251220-go-bin-proprw/pkg/config"
	"github.com/lwmacct/251220-go-bin-proprw/pkg/profile"
)

func profilesAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return err
	}

	catalog, err := profile.LoadCatalog(cfg.Profile.File)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	for _, p := range catalog.All() {
		dest := p.Dest
		if dest == "" {
			dest = p.Source
		}
		fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
		fmt.Fprintf(w, "  %s -> %s\n", p.Source, dest)
		for _, r := range p.Rules {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	return nil
}

func exampleAction(ctx context.Context, cmd *cli.Command) error {
	_, err := cmd.Root().Writer.Write(pkgconfig.ExampleYAML(config.DefaultConfig()))
	return err
}

func configAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return err
	}

	data, err := pkgconfig.MarshalYAML(*cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.Root().Writer.Write(data)
	return err
}
