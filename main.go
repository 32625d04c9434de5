package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/models"
	"github.com/Adarsh-S-Nair/zentari-sub000/app/server"
	"github.com/Adarsh-S-Nair/zentari-sub000/config"
	"github.com/Adarsh-S-Nair/zentari-sub000/log"
	"github.com/Adarsh-S-Nair/zentari-sub000/stock"
)

func main() {
	config.InitConfig()
	log.SetLogging()

	store, err := models.NewStore(config.Config.DBname)
	if err != nil {
		logrus.Fatalf("store open error: %v", err)
	}

	cache := stock.NewCache(stock.NewQuoteProvider(config.Config.FetchWorkers))

	var universe stock.UniverseProvider = stock.DefaultUniverse()
	if _, err := os.Stat("universe.csv"); err == nil {
		loaded, err := stock.UniverseFromCSV("universe.csv")
		if err != nil {
			logrus.Fatalf("universe load error: %v", err)
		}
		universe = loaded
	}

	srv := server.NewServer(cache, universe, store, config.Config.EventBuffer)
	srv.Run(fmt.Sprintf("%s:%d", config.Config.IP, config.Config.Port))
}
