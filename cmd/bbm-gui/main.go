package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/gianting/bilingual-book-maker/internal/invoke"
	"github.com/gianting/bilingual-book-maker/internal/logger"
	"github.com/gianting/bilingual-book-maker/internal/progress"
	"github.com/gianting/bilingual-book-maker/internal/session"
	"github.com/gianting/bilingual-book-maker/internal/settings"
)

func main() {
	logger.Init(logger.LevelInfo, nil)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered GUI panic", "scope", "main", "panic", fmt.Sprint(r))
			os.Exit(1)
		}
	}()

	store := settings.NewStore(settings.DefaultPath)
	initial := session.Initialize(session.CredentialFromEnv(nil), store.LoadOrEmpty())

	command, err := invoke.CommandFromEnv(nil)
	if err != nil {
		logger.Warn("Ignoring translator override", "error", err)
		command = invoke.DefaultCommand()
	}
	ctrl := invoke.NewController(invoke.Config{
		Store:    store,
		Command:  command,
		Schedule: progress.DefaultSchedule(progress.DefaultStepDelay),
	})

	myApp := app.NewWithID("com.gianting.bilingual-book-maker")
	w := myApp.NewWindow("Bilingual Book Maker")
	w.SetMaster()
	w.Resize(fyne.NewSize(560, 320))
	w.CenterOnScreen()

	la := newLauncherApp(w, ctrl, initial)
	w.SetCloseIntercept(func() {
		la.close()
		w.SetCloseIntercept(nil)
		w.Close()
	})
	w.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if len(uris) > 0 {
			la.handleDropped(uris[0])
		}
	})

	w.ShowAndRun()
}
