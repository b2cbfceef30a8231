// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of RELQUERY.
//
//  RELQUERY is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  RELQUERY is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with RELQUERY.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"net/http"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"relquery/cnf"
	"relquery/general"
	"relquery/handlers"
	monitoringActions "relquery/monitoring/handlers"
	"relquery/openapi"
	"relquery/rdb"
	"relquery/store"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type serverInfoResponse struct {
	Name      string              `json:"name"`
	Version   general.VersionInfo `json:"version"`
	Corpora   []string            `json:"corpora"`
	PatternDB bool                `json:"patternDb"`
}

func mkServerInfo(conf *cnf.Conf) gin.HandlerFunc {
	corpora := make([]string, 0, len(conf.Corpora.Resources))
	for id := range conf.Corpora.Resources {
		corpora = append(corpora, id)
	}
	slices.Sort(corpora)
	return func(ctx *gin.Context) {
		uniresp.WriteJSONResponse(
			ctx.Writer,
			serverInfoResponse{
				Name:      "RelQuery",
				Version:   getVersionInfo(),
				Corpora:   corpora,
				PatternDB: conf.PatternStore.IsDBEnabled(),
			},
		)
	}
}

type apiServer struct {
	server   *http.Server
	conf     *cnf.Conf
	radapter *rdb.Adapter
	patterns *store.SQLStore
}

func (api *apiServer) newActions() *handlers.Actions {
	if api.patterns == nil {
		return handlers.NewActions(api.conf.Corpora, api.radapter, nil)
	}
	return handlers.NewActions(api.conf.Corpora, api.radapter, api.patterns)
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.LogLevel.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(additionalLogEvents())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.Use(CORSMiddleware(api.conf))
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	actions := api.newActions()

	engine.GET("/", mkServerInfo(api.conf))

	engine.GET("/openapi", openapi.MkHandleRequest(api.conf.PublicURL, getVersionInfo().Version))

	engine.POST(
		"/relationship", actions.Relationship)

	engine.POST(
		"/match", actions.Match)

	engine.GET(
		"/corpus/:corpusId/relationships", actions.CorpusRelationships)

	engine.POST(
		"/corpus/:corpusId/match", actions.CorpusMatch)

	engine.GET(
		"/patterns", actions.ListPatterns)

	engine.GET(
		"/patterns/:patternId", actions.GetPattern)

	protected := engine.Group("/patterns").Use(AuthRequired(api.conf))

	protected.POST(
		"", actions.CreatePattern)

	protected.DELETE(
		"/:patternId", actions.DeletePattern)

	monActions := monitoringActions.NewActions(api.radapter)

	engine.GET(
		"/monitoring/workers-load", monActions.WorkersLoad)

	engine.GET(
		"/monitoring/workers-load/:workerId", monActions.SingleWorkerLoad)

	engine.GET(
		"/monitoring/recent-records", monActions.RecentRecords)

	log.Info().Msgf("starting to listen at %s", api.conf.ServerAddress())
	api.server = &http.Server{
		Handler:      engine,
		Addr:         api.conf.ServerAddress(),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down RelQuery HTTP API server")
	err := api.server.Shutdown(ctx)
	if api.patterns != nil {
		if err2 := api.patterns.Close(); err2 != nil {
			log.Error().Err(err2).Msg("failed to close pattern store")
		}
	}
	if err2 := api.radapter.Close(); err2 != nil {
		log.Error().Err(err2).Msg("failed to close Redis connection")
	}
	return err
}

// runServices starts all the services and waits for a termination
// signal. Then it stops them with a time limit.
func runServices(ctx context.Context, services []service) {
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}

// openPatternStore returns nil if no pattern database is configured
func openPatternStore(conf *cnf.Conf) *store.SQLStore {
	if !conf.PatternStore.IsDBEnabled() {
		return nil
	}
	patterns, err := store.NewSQLStore(conf.PatternStore)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open pattern store")
	}
	log.Info().Str("driver", conf.PatternStore.Driver).Msg("pattern store enabled")
	return patterns
}

func runApiServer(conf *cnf.Conf) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(conf.Redis)
	err := radapter.TestConnection(redisConnectionTestTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
		return
	}
	server := newAPIServer(conf, radapter, openPatternStore(conf))
	runServices(ctx, []service{server})
}

func newAPIServer(
	conf *cnf.Conf,
	radapter *rdb.Adapter,
	patterns *store.SQLStore,
) *apiServer {
	return &apiServer{
		conf:     conf,
		radapter: radapter,
		patterns: patterns,
	}
}
