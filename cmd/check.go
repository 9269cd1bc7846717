package cmd

import (
	"fmt"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/snowsql"
)

func NewCheckCmd() *cobra.Command {
	var (
		flags    snowflakeFlags
		logFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the Snowflake connection settings",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := initLogger(logLevel, logFile); err != nil {
				panic(err)
			}
			run := func() error {
				sfConfig, err := flags.resolve()
				if err != nil {
					return errors.Trace(err)
				}
				accessor, err := snowsql.NewAccessor(sfConfig)
				if err != nil {
					return errors.Trace(err)
				}
				defer accessor.Close()
				return errors.Trace(accessor.CheckConnection(cmd.Context()))
			}
			if err := run(); err != nil {
				log.Error("Connection check failed", zap.Error(err))
				return
			}
			fmt.Println("Connection OK")
		},
	}

	addSnowflakeFlags(cmd, &flags)
	addLogFlags(cmd, &logFile, &logLevel)

	return cmd
}
