package cmd

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/apiservice"
	"github.com/etlcraft/snowbridge/pkg/metrics"
	"github.com/etlcraft/snowbridge/pkg/source"
)

const sourcePipelineName = "source"

func NewSourceCmd() *cobra.Command {
	var (
		flags        snowflakeFlags
		query        string
		maxSplitSize int64
		cleanup      bool
		workDir      string
		outPath      string
		apiAddr      string
		logFile      string
		logLevel     string
	)

	run := func(ctx context.Context, service *apiservice.APIService) error {
		sfConfig, err := flags.resolve()
		if err != nil {
			return errors.Trace(err)
		}
		accessor, err := source.NewAccessor(&source.Config{
			Snowflake:     sfConfig,
			ImportQuery:   query,
			MaxSplitSize:  maxSplitSize,
			CleanupSplits: cleanup,
			WorkDir:       workDir,
		})
		if err != nil {
			return errors.Trace(err)
		}
		defer accessor.Close()

		var out io.Writer = os.Stdout
		if outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return errors.Annotate(err, "Failed to create output file")
			}
			defer f.Close()
			out = f
		}
		writer := csv.NewWriter(out)

		var metric *metrics.Metrics
		if service != nil {
			metric = service.Metric
		}

		splits, err := accessor.PrepareSplits(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		headerDone := false
		for _, split := range splits {
			reader, err := accessor.OpenSplit(ctx, split)
			if err != nil {
				return errors.Trace(err)
			}
			for {
				record, err := reader.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					reader.Close()
					return errors.Trace(err)
				}
				if !headerDone {
					if err := writer.Write(record.Columns); err != nil {
						reader.Close()
						return errors.Trace(err)
					}
					headerDone = true
				}
				if err := writer.Write(record.Values); err != nil {
					reader.Close()
					return errors.Trace(err)
				}
				if metric != nil {
					metrics.AddCounter(metric.RowsReadCounter, 1, sourcePipelineName)
				}
			}
			if err := reader.Close(); err != nil {
				return errors.Trace(err)
			}
			if metric != nil {
				metrics.AddCounter(metric.SplitsProcessedCounter, 1, sourcePipelineName)
			}
		}
		writer.Flush()
		return errors.Trace(writer.Error())
	}

	cmd := &cobra.Command{
		Use:   "source",
		Short: "Unload an import query through a stage and emit its rows as CSV",
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
					service.APIInfo.SetStatusFatalError(sourcePipelineName, err)
					metrics.AddCounter(service.Metric.ErrorCounter, 1, sourcePipelineName)
				}
				log.Error("Error running source", zap.Error(err))
			}
		},
	}

	addSnowflakeFlags(cmd, &flags)
	addLogFlags(cmd, &logFile, &logLevel)
	cmd.Flags().StringVarP(&query, "query", "q", "", "import query")
	cmd.Flags().Int64Var(&maxSplitSize, "max-split-size", 0, "upper bound of each staged result file in bytes (0 = warehouse default)")
	cmd.Flags().BoolVar(&cleanup, "cleanup-splits", true, "remove each staged file after it is read")
	cmd.Flags().StringVar(&workDir, "workdir", "", "local directory for downloaded splits (default: system temp)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output CSV path, - for stdout")
	cmd.Flags().StringVar(&apiAddr, "api.addr", "", "address of the /info and /metrics HTTP service")

	cmd.MarkFlagRequired("query")

	return cmd
}
