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
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"relquery/cnf"
	"relquery/general"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	redisConnectionTestTimeout = 120 * time.Second
)

var (
	version   string
	buildDate string
	gitCommit string
)

type service interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

func getEnv(name string) string {
	for _, p := range os.Environ() {
		items := strings.SplitN(p, "=", 2)
		if len(items) == 2 && items[0] == name {
			return items[1]
		}
	}
	return ""
}

func getRequestOrigin(ctx *gin.Context) string {
	currOrigin, ok := ctx.Request.Header["Origin"]
	if ok {
		return currOrigin[0]
	}
	return ""
}

func additionalLogEvents() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logging.AddLogEvent(ctx, "userAgent", ctx.Request.UserAgent())
		logging.AddLogEvent(ctx, "corpusId", ctx.Param("corpusId"))
		ctx.Next()
	}
}

func CORSMiddleware(conf *cnf.Conf) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if strings.HasSuffix(ctx.Request.URL.Path, "/openapi") {
			ctx.Header("Access-Control-Allow-Origin", "*")
			ctx.Header("Access-Control-Allow-Methods", "GET")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type")

		} else {
			var allowedOrigin string
			currOrigin := getRequestOrigin(ctx)
			for _, origin := range conf.CorsAllowedOrigins {
				if currOrigin == origin || origin == "*" {
					allowedOrigin = currOrigin
					break
				}
			}
			if allowedOrigin != "" {
				ctx.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				ctx.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
				ctx.Writer.Header().Set(
					"Access-Control-Allow-Headers",
					"Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With",
				)
				ctx.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
			}
			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		}
		ctx.Next()
	}
}

// AuthRequired rejects requests without one of the configured
// tokens. With no tokens configured, everything passes.
func AuthRequired(conf *cnf.Conf) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if len(conf.AuthTokens) > 0 &&
			!collections.SliceContains(conf.AuthTokens, ctx.GetHeader(conf.AuthHeaderName)) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx.Next()
	}
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func getVersionInfo() general.VersionInfo {
	return general.VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}
}

// loadConf loads and validates configuration of a server or
// a worker and sets up logging. Workers log into a separate file
// next to the main log.
func loadConf(path string, isWorker bool) *cnf.Conf {
	conf := cnf.LoadConfig(path)
	if isWorker {
		var wPath string
		if conf.LogFile != "" {
			wPath = filepath.Join(filepath.Dir(conf.LogFile), "worker.log")
		}
		logging.SetupLogging(wPath, conf.LogLevel)
		log.Logger = log.Logger.With().Str("worker", getWorkerID()).Logger()

	} else {
		logging.SetupLogging(conf.LogFile, conf.LogLevel)
	}
	cnf.ValidateAndDefaults(conf)
	if conf.Redis == nil {
		log.Fatal().Msg("missing `redis` section")
	}
	return conf
}

// loadToolConf loads configuration for command line tools
// which log to stderr and do not need Redis.
func loadToolConf(path string) *cnf.Conf {
	conf := cnf.LoadConfig(path)
	logging.SetupLogging("", conf.LogLevel)
	cnf.ValidateAndDefaults(conf)
	return conf
}

var rootCmd = &cobra.Command{
	Use:   "relquery",
	Short: "RELQUERY - syntactic relationships finder for dependency-parsed corpora",
	Long: `RELQUERY finds syntactic relationships between pairs of entities
in dependency-parsed corpora, extracts generalized patterns out of them
and searches corpora for the patterns.`,
	SilenceUsage: true,
}

var serverCmd = &cobra.Command{
	Use:   "server CONFIG",
	Short: "Run the HTTP API server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConf(args[0], false)
		log.Info().Msg("Starting RelQuery API server")
		runApiServer(conf)
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker CONFIG",
	Short: "Run a corpus scanning worker",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConf(args[0], true)
		log.Info().Msg("Starting RelQuery worker")
		runWorker(conf)
	},
}

var testCmd = &cobra.Command{
	Use:   "test CONFIG",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conf := cnf.LoadConfig(args[0])
		cnf.ValidateAndDefaults(conf)
		log.Info().Msg("config OK")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ver := getVersionInfo()
		fmt.Printf(
			"relquery %s\nbuild date: %s\nlast commit: %s\n",
			ver.Version, ver.BuildDate, ver.GitCommit,
		)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd, workerCmd, testCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
