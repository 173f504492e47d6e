package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lwmacct/251219-go-pkg-logm/pkg/logm"

	app "github.com/lwmacct/251220-go-bin-proprw/internal/command/proprw"
)

func main() {
	_ = logm.Init(logm.PresetAuto()...)
	if err := app.Command.Run(context.Background(), os.Args); err != nil {
		slog.Error("应用程序运行失败", "error", err)
		os.Exit(1)
	}
}
