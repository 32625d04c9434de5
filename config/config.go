package config

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Config represents config info
var Config ConfList

// ConfList has contents of config.ini
type ConfList struct {
	DBname       string
	Port         int
	IP           string
	QuoteSource  string
	FetchWorkers int
	EventBuffer  int
}

// InitConfig initializes config settings, falling back to defaults
// when config.ini is missing or incomplete
func InitConfig() {
	conf, err := ini.Load("config.ini")
	if err != nil {
		logrus.Warnf("init file open error: %v", err)
		conf = ini.Empty()
	}

	Config = ConfList{
		DBname:       conf.Section("db").Key("name").MustString("backtest.sqlite3"),
		Port:         conf.Section("web").Key("port").MustInt(8080),
		IP:           conf.Section("web").Key("ip").MustString(""),
		QuoteSource:  conf.Section("quote").Key("source").MustString("yahoo"),
		FetchWorkers: conf.Section("quote").Key("workers").MustInt(4),
		EventBuffer:  conf.Section("simulation").Key("event_buffer").MustInt(64),
	}
}
