package cmd

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/apiservice"
	"github.com/etlcraft/snowbridge/pkg/metrics"
	"github.com/etlcraft/snowbridge/pkg/plugin"
	"github.com/etlcraft/snowbridge/pkg/sink"
	"github.com/etlcraft/snowbridge/pkg/utils"
)

func NewSinkCmd() *cobra.Command {
	var (
		flags       snowflakeFlags
		targetTable string
		inPath      string
		maxFileSize int
		stageName   string
		autoCreate  bool
		onError     OnErrorFlag
		apiAddr     string
		logFile     string
		logLevel    string
	)

	run := func(ctx context.Context, service *apiservice.APIService) error {
		sfConfig, err := flags.resolve()
		if err != nil {
			return errors.Trace(err)
		}
		// a schema-qualified --table overrides --snowflake.schema
		table := targetTable
		if schemaName, tableName := utils.SplitTableFQN(targetTable); schemaName != "" {
			sfConfig.Schema = schemaName
			table = tableName
		}

		var in io.Reader = os.Stdin
		if inPath != "-" {
			f, err := os.Open(inPath)
			if err != nil {
				return errors.Annotate(err, "Failed to open input file")
			}
			defer f.Close()
			in = f
		}
		reader := csv.NewReader(in)
		header, err := reader.Read()
		if err != nil {
			return errors.Annotate(err, "Failed to read input header")
		}
		// CSV text carries no type information, the target columns are
		// created as VARCHAR when auto-create is on
		schema := make(plugin.Schema, 0, len(header))
		for _, name := range header {
			schema = append(schema, plugin.Field{Name: name, Type: plugin.FieldTypeString, Nullable: true})
		}

		config := &sink.Config{
			Snowflake:       sfConfig,
			TargetTable:     table,
			MaxFileSize:     maxFileSize,
			StageName:       stageName,
			AutoCreateTable: autoCreate,
			OnError:         onErrorFlagToMode[onError],
		}
		if service != nil {
			config.Metrics = service.Metric
		}
		s, err := sink.NewSink(config, schema)
		if err != nil {
			return errors.Trace(err)
		}

		for {
			row, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return errors.Annotate(err, "Failed to parse input record")
			}
			record := plugin.Record{Columns: header, Values: row, Null: make([]bool, len(row))}
			if err := s.Write(ctx, record); err != nil {
				return errors.Trace(err)
			}
		}
		return errors.Trace(s.Close(ctx))
	}

	cmd := &cobra.Command{
		Use:   "sink",
		Short: "Load CSV records into a table through staged batches",
		Run: func(cmd *cobra.Command, _ []string) {
			if err := initLogger(logLevel, logFile); err != nil {
				panic(err)
			}
			service, err := startAPIService(apiAddr)
			if err != nil {
				log.Error("Error starting API service", zap.Error(err))
				return
			}
			if err := run(cmd.Context(), service); err != nil {
				if service != nil {
					service.APIInfo.SetStatusFatalError(targetTable, err)
					metrics.AddCounter(service.Metric.ErrorCounter, 1, targetTable)
				}
				log.Error("Error running sink", zap.Error(err))
			}
		},
	}

	addSnowflakeFlags(cmd, &flags)
	addLogFlags(cmd, &logFile, &logLevel)
	cmd.Flags().StringVarP(&targetTable, "table", "t", "", "target table name")
	cmd.Flags().StringVarP(&inPath, "in", "i", "-", "input CSV path, - for stdin")
	cmd.Flags().IntVar(&maxFileSize, "max-file-size", 8*1024*1024, "upper bound of each staged batch in bytes (0 = single batch)")
	cmd.Flags().StringVar(&stageName, "stage", "", "named internal stage for batches (default: per-run user stage directory)")
	cmd.Flags().BoolVar(&autoCreate, "auto-create-table", false, "create the target table if it does not exist")
	cmd.Flags().Var(enumflag.New(&onError, "on-error", OnErrorFlagIds, enumflag.EnumCaseInsensitive),
		"on-error", "COPY INTO error handling: abort-statement, continue, skip-file")
	cmd.Flags().StringVar(&apiAddr, "api.addr", "", "address of the /info and /metrics HTTP service")

	cmd.MarkFlagRequired("table")

	return cmd
}
