package main

import (
	"fmt"
	"os"
	"path/filepath"

	"cled/internal/game"
	"cled/internal/prefs"

	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	prefsPath := prefs.File
	if home, err := os.UserHomeDir(); err == nil {
		prefsPath = filepath.Join(home, prefs.File)
	}
	p, err := prefs.Load(prefsPath)
	if err != nil {
		log.Warn("Ignoring unreadable preferences", zap.String("path", prefsPath), zap.Error(err))
		p = prefs.Default()
	}

	var statePath string
	if len(os.Args) > 1 {
		statePath = os.Args[1]
	}

	g := game.New(p, prefsPath, log)
	g.Run(statePath)
}
