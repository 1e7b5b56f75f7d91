package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"mediapress/internal/httpapi"
	"mediapress/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an HTTP API that accepts compression jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		var rdb *redis.Client
		if cfg.RedisAddr != "" {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Password: cfg.RedisPassword})
			if err := rdb.Ping(context.Background()).Err(); err != nil {
				logger.Warnf("Redis ping failed: %v (fallback to memory)", err)
				rdb = nil
			}
		}
		st := store.NewRedisStore(rdb)

		r := httpapi.NewRouter(httpapi.Deps{Cfg: cfg, Logger: logger, Store: st})
		addr := serveAddr
		if addr == "" {
			addr = fmt.Sprintf("0.0.0.0:%d", cfg.Port)
		}
		logger.Infof("listening on %s", addr)
		return r.Run(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default 0.0.0.0:<port from config>)")
	rootCmd.AddCommand(serveCmd)
}
