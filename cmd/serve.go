package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/intelligrit/bookcrawl/internal/web"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the crawl API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("host") {
			serveHost = cfg.Server.Host
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Server.Port
		}

		log, err := newLogger(os.Stdout)
		if err != nil {
			return err
		}

		srv := &web.Server{
			Crawler:      newCrawler(log),
			Limits:       cfg.Limits,
			Addr:         fmt.Sprintf("%s:%d", serveHost, servePort),
			Log:          log,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
		}
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 5000, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
