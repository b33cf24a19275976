package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/pflag"

	"github.com/Garsondee/Tank-Arena/internal/app"
	"github.com/Garsondee/Tank-Arena/internal/config"
	"github.com/Garsondee/Tank-Arena/internal/logging"
)

func main() {
	fs := pflag.NewFlagSet("tank-arena", pflag.ExitOnError)
	config.RegisterFlags(fs)
	configDir := fs.String("config-dir", ".", "directory searched for tankarena.yaml")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configDir, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("starting game")
	}
	defer a.Close()

	ebiten.SetWindowTitle(fmt.Sprintf("Tank Arena - %s (%s)", cfg.Name, cfg.Mode))
	w, h := a.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(a); err != nil {
		log.Error().Err(err).Msg("game loop exited")
	}
}
