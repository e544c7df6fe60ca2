package bmeta

import "github.com/sirupsen/logrus"

const defaultBuildMeta = "N/A" // Значение по умолчанию

// Meta версия, дата и коммит сборки.
type Meta struct {
	Version string
	Date    string
	Commit  string
}

// New подставляет defaultBuildMeta вместо пустых значений.
func New(version, date, commit string) Meta {
	return Meta{
		Version: orDefault(version),
		Date:    orDefault(date),
		Commit:  orDefault(commit),
	}
}

// Print пишет в лог версию, дату и комит сборки.
func Print(logger logrus.FieldLogger, version, date, commit string) {
	meta := New(version, date, commit)
	logger.WithFields(logrus.Fields{
		"version": meta.Version,
		"date":    meta.Date,
		"commit":  meta.Commit,
	}).Info("Build info")
}

func orDefault(v string) string {
	if v == "" {
		return defaultBuildMeta
	}
	return v
}
