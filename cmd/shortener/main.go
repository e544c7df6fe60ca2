package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lnkz/internal/app"
	"github.com/fsdevblog/lnkz/internal/bmeta"
	"github.com/fsdevblog/lnkz/internal/config"
)

// Заполняются при сборке через -ldflags "-X main.buildVersion=...".
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	appConf := config.MustLoadConfig()

	a := app.Must(app.New(*appConf))
	bmeta.Print(a.Logger, buildVersion, buildDate, buildCommit)

	a.Logger.WithFields(logrus.Fields{
		"address":  appConf.ServerAddress,
		"base_url": appConf.BaseURL,
		"storage":  appConf.DBType,
	}).Info("Starting server")
	if err := a.Run(); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
