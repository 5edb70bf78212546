package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	portFlag           int
	configFlag         string
	dbFilenameFlag     string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFlag, "config", "", "Config file to use")
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&dbFilenameFlag, "db", "", "Task DB file name (in-memory db if empty)")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	listen := fmt.Sprintf(":%d", portFlag)
	dbFilename := dbFilenameFlag
	if configFlag != "" {
		config, err := getConfig(configFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot read config file")
		}
		if config.Listen != "" {
			listen = config.Listen
		}
		if config.DB != "" && dbFilename == "" {
			dbFilename = config.DB
		}
		if config.LogLevel != "" {
			if level, err := zerolog.ParseLevel(config.LogLevel); err == nil {
				log.Logger = log.Logger.Level(level)
			} else {
				log.Warn().Str("logLevel", config.LogLevel).Msg("Unknown log level in config")
			}
		}
	}

	srv := &server{
		store: NewTaskStore(dbFilename),
		log:   log.Logger,
	}

	log.Info().Msgf("Listening on %s", listen)
	if err := http.ListenAndServe(listen, srv.routes()); err != nil {
		panic(err)
	}
}
