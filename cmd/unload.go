package cmd

import (
	"context"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/unload"
)

func NewUnloadCmd() *cobra.Command {
	var (
		flags    snowflakeFlags
		config   unload.Config
		storage  string
		logFile  string
		logLevel string
	)

	run := func(ctx context.Context) error {
		sfConfig, err := flags.resolve()
		if err != nil {
			return errors.Trace(err)
		}
		config.Snowflake = sfConfig
		if storage != "" {
			credValue, err := resolveAWSCredential(storage)
			if err != nil {
				return errors.Trace(err)
			}
			config.StorageURL = storage
			config.Credentials = credValue
		}
		action, err := unload.NewAction(&config)
		if err != nil {
			return errors.Trace(err)
		}
		defer action.Close()
		return errors.Trace(action.Run(ctx))
	}

	cmd := &cobra.Command{
		Use:   "unload",
		Short: "Unload a table or query into files on cloud storage or a stage",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := initLogger(logLevel, logFile); err != nil {
				panic(err)
			}
			if err := run(cmd.Context()); err != nil {
				log.Error("Error running unload", zap.Error(err))
			}
		},
	}

	addSnowflakeFlags(cmd, &flags)
	addLogFlags(cmd, &logFile, &logLevel)
	cmd.Flags().StringVarP(&config.SourceTable, "table", "t", "", "source table name")
	cmd.Flags().StringVarP(&config.SourceQuery, "query", "q", "", "source query (alternative to --table)")
	cmd.Flags().StringVarP(&storage, "storage", "s", "", "destination: s3://<bucket>/<path>")
	cmd.Flags().StringVar(&config.DestinationStage, "stage", "", "destination stage path (alternative to --storage)")
	cmd.Flags().BoolVar(&config.Header, "header", true, "write a header row into each file")
	cmd.Flags().BoolVar(&config.SingleFile, "single", false, "produce a single file")
	cmd.Flags().BoolVar(&config.Overwrite, "overwrite", false, "overwrite existing files")
	cmd.Flags().BoolVar(&config.IncludeQueryId, "include-query-id", false, "include the query id in file names")
	cmd.Flags().Int64Var(&config.MaxFileSize, "max-file-size", 0, "upper bound of each file in bytes (0 = warehouse default)")
	cmd.Flags().StringVar(&config.PartitionBy, "partition-by", "", "PARTITION BY expression")

	return cmd
}
