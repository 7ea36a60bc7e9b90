package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile            = ".env"
	defaultTimeoutSeconds     = 30
	defaultMongoDatabase      = "fintrack"
	defaultMongoHost          = "localhost"
	defaultMongoPort          = "27017"
	defaultCachePath          = "./data/cache.db"
	defaultCSVDir             = "./data"
	defaultProcessedDir       = "processed"
	defaultUnprocessedDir     = "unprocessed"
	defaultMoveProcessedFiles = false
	defaultSyntheticDataDir   = "tmp/synthetic"
	defaultSyntheticDataRows  = 100
	envFile                   = "ENV_FILE"
	envMongoURI               = "MONGO_URI"
	envMongoHost              = "MONGO_HOST"
	envMongoUser              = "MONGO_USER"
	envMongoPassword          = "MONGO_PASSWORD"
	envMongoDatabase          = "MONGO_DATABASE"
	envCachePath              = "CACHE_PATH"
	envUser                   = "FINTRACK_USER"
	envCSVDirectory           = "CSV_DIR"
	envProcessedDirectory     = "PROCESSED_DIR"
	envUnprocessedDirectory   = "UNPROCESSED_DIR"
	envMoveProcessedFiles     = "MOVE_PROCESSED_FILES"
	envSyntheticDataDir       = "SYNTHETIC_DATA_DIR"
	envSyntheticDataRows      = "SYNTHETIC_DATA_ROWS"
	envTimeoutSeconds         = "TIMEOUT_SECONDS"
)

// env resolves variables from the process environment first, then from the .env file.
type env struct {
	file map[string]string
}

func (e env) get(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return e.file[key]
}

// LoadConfig loads the application configuration from environment variables, an optional
// .env file (ENV_FILE, default ".env"), or default values. Process variables win over the file.
func LoadConfig(ctx context.Context, logger *slog.Logger) *Config {
	vars := env{file: loadEnvFile(ctx, logger)}

	mongoURI, remoteEnabled := formatMongoURI(ctx, vars, logger)
	mongoDatabase := getString(ctx, vars, logger, envMongoDatabase, defaultMongoDatabase)
	cachePath := getString(ctx, vars, logger, envCachePath, defaultCachePath)

	userID := vars.get(envUser)
	if userID == "" {
		logger.DebugContext(ctx, "No user configured, running as guest")
	} else {
		logger.DebugContext(ctx, "Using user from environment variable", "user", userID)
	}

	csvDirectory := getString(ctx, vars, logger, envCSVDirectory, defaultCSVDir)

	// Configure the dirs for processed/unprocessed files.
	unprocessedDir := fmt.Sprintf("%s/%s", csvDirectory,
		getString(ctx, vars, logger, envUnprocessedDirectory, defaultUnprocessedDir))
	processedDir := fmt.Sprintf("%s/%s", csvDirectory,
		getString(ctx, vars, logger, envProcessedDirectory, defaultProcessedDir))

	logger.DebugContext(ctx, "Constructed directory paths", "unprocessed", unprocessedDir, "processed", processedDir)

	moveProcessedFiles := defaultMoveProcessedFiles
	if moveProcessedFilesStr := vars.get(envMoveProcessedFiles); moveProcessedFilesStr != "" {
		parsedBool, err := strconv.ParseBool(moveProcessedFilesStr)
		if err != nil {
			logger.WarnContext(
				ctx,
				"Invalid value for MOVE_PROCESSED_FILES, using default",
				"value", moveProcessedFilesStr,
				"default", defaultMoveProcessedFiles,
				"error", err,
			)
		} else {
			moveProcessedFiles = parsedBool
			logger.DebugContext(ctx, "Set moveProcessedFiles from environment variable", "value", moveProcessedFiles)
		}
	} else {
		logger.DebugContext(ctx, "Using default value for moveProcessedFiles", "value", defaultMoveProcessedFiles)
	}

	return &Config{
		MongoURI:           mongoURI,
		MongoDatabase:      mongoDatabase,
		RemoteEnabled:      remoteEnabled,
		CachePath:          cachePath,
		UserID:             userID,
		UnprocessedDir:     unprocessedDir,
		ProcessedDir:       processedDir,
		MoveProcessedFiles: moveProcessedFiles,
		SyntheticDataDir:   getString(ctx, vars, logger, envSyntheticDataDir, defaultSyntheticDataDir),
		SyntheticDataRows:  getPositiveInt(ctx, vars, logger, envSyntheticDataRows, defaultSyntheticDataRows),
		Timeout:            time.Duration(getPositiveInt(ctx, vars, logger, envTimeoutSeconds, defaultTimeoutSeconds)) * time.Second,
	}
}

func loadEnvFile(ctx context.Context, logger *slog.Logger) map[string]string {
	path := os.Getenv(envFile)
	if path == "" {
		path = defaultEnvFile
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.DebugContext(ctx, "No env file found", "path", path)
		return nil
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to read env file, ignoring it", "path", path, "error", err)
		return nil
	}

	logger.DebugContext(ctx, "Loaded env file", "path", path, "variables", len(values))
	return values
}

func getString(ctx context.Context, vars env, logger *slog.Logger, key, fallback string) string {
	value := vars.get(key)
	if value == "" {
		logger.DebugContext(ctx, "Using default value", "variable", key, "value", fallback)
		return fallback
	}
	logger.DebugContext(ctx, "Using value from environment variable", "variable", key, "value", value)
	return value
}

func getPositiveInt(ctx context.Context, vars env, logger *slog.Logger, key string, fallback int) int {
	raw := vars.get(key)
	if raw == "" {
		logger.DebugContext(ctx, "Using default value", "variable", key, "value", fallback)
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		logger.WarnContext(ctx, "Invalid positive integer, using default",
			"variable", key, "value", raw, "default", fallback, "error", err)
		return fallback
	}
	logger.DebugContext(ctx, "Using value from environment variable", "variable", key, "value", value)
	return value
}

// formatMongoURI formats mongo settings to a url and reports whether a location was configured.
func formatMongoURI(
	ctx context.Context,
	vars env,
	logger *slog.Logger,
) (string, bool) {
	if mongoURI := vars.get(envMongoURI); mongoURI != "" {
		logger.DebugContext(ctx, "Using MongoDB URI from environment variable", "uri", mongoURI)
		return mongoURI, true
	}

	mongoHost := vars.get(envMongoHost)
	configured := mongoHost != ""
	if mongoHost == "" {
		mongoHost = defaultMongoHost
		logger.DebugContext(ctx, "Using default MongoDB host", "host", mongoHost)
	} else {
		logger.DebugContext(ctx, "Using MongoDB host from environment variable", "host", mongoHost)
	}

	hostPort := net.JoinHostPort(mongoHost, defaultMongoPort)
	mongoUser := vars.get(envMongoUser)
	mongoPassword := vars.get(envMongoPassword)

	if mongoUser != "" && mongoPassword != "" {
		mongoURI := fmt.Sprintf(
			"mongodb://%s:%s@%s/?authSource=admin",
			mongoUser,
			mongoPassword,
			hostPort,
		)
		logger.DebugContext(ctx, "Created MongoDB URI from user, password, and host", "host", hostPort)
		return mongoURI, true
	}

	mongoURI := fmt.Sprintf("mongodb://%s", hostPort)
	logger.DebugContext(ctx, "Using MongoDB URI without credentials", "uri", mongoURI)
	return mongoURI, configured
}
