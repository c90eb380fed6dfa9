package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/baiirun/tracker/internal/config"
	"github.com/baiirun/tracker/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracker over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.verbose {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := server.NewServer(a.mgr,
				server.WithLogger(a.logger),
				server.WithAfterWrite(a.persist),
			)
			return srv.Run(a.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = a.v.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))
	return cmd
}
