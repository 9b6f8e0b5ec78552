package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	logger "github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/pk910/eth-graffiti-explorer/db"
	"github.com/pk910/eth-graffiti-explorer/handlers/api"
	"github.com/pk910/eth-graffiti-explorer/indexer"
	"github.com/pk910/eth-graffiti-explorer/metrics"
	"github.com/pk910/eth-graffiti-explorer/rpc"
	"github.com/pk910/eth-graffiti-explorer/services"
	"github.com/pk910/eth-graffiti-explorer/types"
	"github.com/pk910/eth-graffiti-explorer/utils"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file, if empty string defaults will be used")
	flag.Parse()

	cfg := &types.Config{}
	err := utils.ReadConfig(cfg, *configPath)
	if err != nil {
		logger.Fatalf("error reading config file: %v", err)
	}
	utils.Config = cfg
	utils.InitLogger()

	logger.WithFields(logger.Fields{
		"config":    *configPath,
		"chainName": utils.Config.Chain.Name}).Printf("starting")

	db.MustInitDB()
	err = db.ApplyEmbeddedDbSchema(-2)
	if err != nil {
		logger.Fatalf("error initializing db schema: %v", err)
	}

	client := rpc.NewBeaconClient(cfg.BeaconApi.Endpoint, cfg.BeaconApi.Name, cfg.BeaconApi.Headers)

	err = indexer.StartIndexer(client)
	if err != nil {
		logger.Fatalf("error starting indexer: %v", err)
	}
	err = services.StartGraffitiService()
	if err != nil {
		logger.Fatalf("error starting graffiti service: %v", err)
	}
	err = services.StartValidatorService(client)
	if err != nil {
		logger.Fatalf("error starting validator service: %v", err)
	}

	if cfg.Metrics.Enabled {
		err = metrics.StartMetricsServer(logger.StandardLogger(), cfg.Metrics.Host, cfg.Metrics.Port)
		if err != nil {
			logger.Fatalf("error starting metrics server: %v", err)
		}
	}

	if !cfg.Indexer.DisableSyncLoop {
		indexer.GlobalIndexer.StartSyncLoop(context.Background())
	}

	startApiServer()

	utils.WaitForCtrlC()
	logger.Println("exiting...")
	db.MustCloseDB()
}

func startApiServer() {
	router := mux.NewRouter()

	router.HandleFunc("/api/graffiti/search", api.ApiGraffitiSearch).Methods("POST")
	router.HandleFunc("/api/graffiti/recent", api.ApiGraffitiRecent).Methods("GET")
	router.HandleFunc("/api/graffiti/top", api.ApiGraffitiTop).Methods("GET")
	router.HandleFunc("/api/graffiti/validator/{index}", api.ApiGraffitiByValidator).Methods("GET")
	router.HandleFunc("/api/graffiti/count", api.ApiGraffitiCount).Methods("GET")
	router.HandleFunc("/api/graffiti/{id}", api.ApiGraffitiById).Methods("GET")
	router.HandleFunc("/api/beacon/sync", api.ApiBeaconSync).Methods("POST")
	router.HandleFunc("/api/beacon/sync-state", api.ApiBeaconSyncState).Methods("GET")
	router.HandleFunc("/api/beacon/current-slot", api.ApiBeaconCurrentSlot).Methods("GET")
	router.HandleFunc("/api/beacon/finalized-slot", api.ApiBeaconFinalizedSlot).Methods("GET")
	router.HandleFunc("/api/beacon/health", api.ApiBeaconHealth).Methods("GET")
	router.HandleFunc("/api/blocks/{slotOrRoot}", api.ApiBlock).Methods("GET")
	router.HandleFunc("/api/validators/active", api.ApiActiveValidators).Methods("GET")
	router.HandleFunc("/api/validators/{idxOrPubkey}", api.ApiValidator).Methods("GET")

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.UseHandler(router)

	if utils.Config.Server.HttpWriteTimeout == 0 {
		utils.Config.Server.HttpWriteTimeout = time.Second * 15
	}
	if utils.Config.Server.HttpReadTimeout == 0 {
		utils.Config.Server.HttpReadTimeout = time.Second * 15
	}
	if utils.Config.Server.HttpIdleTimeout == 0 {
		utils.Config.Server.HttpIdleTimeout = time.Second * 60
	}
	srv := &http.Server{
		Addr:         utils.Config.Server.Host + ":" + utils.Config.Server.Port,
		WriteTimeout: utils.Config.Server.HttpWriteTimeout,
		ReadTimeout:  utils.Config.Server.HttpReadTimeout,
		IdleTimeout:  utils.Config.Server.HttpIdleTimeout,
		Handler:      n,
	}

	logger.Printf("http server listening on %v", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.WithError(err).Fatal("Error serving api")
		}
	}()
}
