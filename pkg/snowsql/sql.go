package snowsql

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/pingcap/errors"
	"github.com/snowflakedb/gosnowflake"
	"gitlab.com/tymonx/go-formatter/formatter"

	"github.com/etlcraft/snowbridge/pkg/sferror"
	"github.com/etlcraft/snowbridge/pkg/utils"
)

// OnErrorMode is the COPY INTO <table> ON_ERROR option.
type OnErrorMode string

const (
	OnErrorAbort    OnErrorMode = "ABORT_STATEMENT"
	OnErrorContinue OnErrorMode = "CONTINUE"
	OnErrorSkipFile OnErrorMode = "SKIP_FILE"
)

// unloadFileFormat is the stage file format both sides of the connector
// agree on: gzipped CSV, header row, ISO timestamps, empty string as NULL
// marker disabled.
const unloadFileFormat = `FILE_FORMAT = (
TYPE = 'CSV'
COMPRESSION = GZIP
FIELD_DELIMITER = ','
ESCAPE = NONE
ESCAPE_UNENCLOSED_FIELD = NONE
DATE_FORMAT = 'YYYY-MM-DD'
TIME_FORMAT = 'HH24:MI:SS'
TIMESTAMP_FORMAT = 'YYYY-MM-DD"T"HH24:MI:SSTZH:TZM'
FIELD_OPTIONALLY_ENCLOSED_BY = '"'
NULL_IF = ''
EMPTY_FIELD_AS_NULL = FALSE)`

func CreateInternalStage(db *sql.DB, stageName string) error {
	sql, err := formatter.Format(`
CREATE OR REPLACE STAGE {stageName}
FILE_FORMAT = (TYPE = 'CSV' EMPTY_FIELD_AS_NULL = FALSE NULL_IF=('\\N') FIELD_OPTIONALLY_ENCLOSED_BY='"' ESCAPE='\\');
`, formatter.Named{
		"stageName": utils.EscapeString(stageName),
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = db.Exec(sql)
	return sferror.WrapSQL(err, "Failed to create stage %s", stageName)
}

func CreateExternalStage(db *sql.DB, stageName, storageURL string, cred *credentials.Value) error {
	sql, err := formatter.Format(`
CREATE OR REPLACE STAGE {stageName}
URL = '{url}'
CREDENTIALS = (AWS_KEY_ID = '{awsKeyId}' AWS_SECRET_KEY = '{awsSecretKey}' AWS_TOKEN = '{awsToken}')
FILE_FORMAT = (TYPE = 'CSV' EMPTY_FIELD_AS_NULL = FALSE NULL_IF=('\\N') FIELD_OPTIONALLY_ENCLOSED_BY='"' ESCAPE='\\');
`, formatter.Named{
		"stageName":    utils.EscapeString(stageName),
		"url":          utils.EscapeString(storageURL),
		"awsKeyId":     utils.EscapeString(cred.AccessKeyID),
		"awsSecretKey": utils.EscapeString(cred.SecretAccessKey),
		"awsToken":     utils.EscapeString(cred.SessionToken),
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = db.Exec(sql)
	return sferror.WrapSQL(err, "Failed to create external stage %s", stageName)
}

func DropStage(db *sql.DB, stageName string) error {
	sql, err := formatter.Format(`
DROP STAGE IF EXISTS {stageName};
`, formatter.Named{
		"stageName": utils.EscapeString(stageName),
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = db.Exec(sql)
	return sferror.WrapSQL(err, "Failed to drop stage %s", stageName)
}

// GenUnloadQuery builds the COPY INTO <stage> statement that unloads an
// import query into gzipped CSV files under stagePath. maxFileSize <= 0
// leaves the warehouse default split size in place.
func GenUnloadQuery(stagePath, query string, maxFileSize int64) string {
	stmt := fmt.Sprintf("COPY INTO @%s/data_\nFROM (%s)\n%s\nOVERWRITE = TRUE HEADER = TRUE SINGLE = FALSE",
		stagePath, utils.RemoveSemicolon(query), unloadFileFormat)
	if maxFileSize > 0 {
		stmt = fmt.Sprintf("%s MAX_FILE_SIZE = %d", stmt, maxFileSize)
	}
	return stmt
}

func UnloadQueryToStage(db *sql.DB, stagePath, query string, maxFileSize int64) error {
	_, err := db.Exec(GenUnloadQuery(stagePath, query, maxFileSize))
	return sferror.WrapSQL(err, "Failed to unload query into stage @%s", stagePath)
}

// StageFile is one entry of a LIST <stage> result.
type StageFile struct {
	Name string
	Size int64
}

func ListStage(db *sql.DB, stagePath string) ([]StageFile, error) {
	rows, err := db.Query(fmt.Sprintf("LIST @%s", stagePath))
	if err != nil {
		return nil, sferror.WrapSQL(err, "Failed to list stage @%s", stagePath)
	}
	defer rows.Close()

	var files []StageFile
	for rows.Next() {
		var (
			name         string
			size         int64
			md5          sql.NullString
			lastModified sql.NullString
		)
		if err := rows.Scan(&name, &size, &md5, &lastModified); err != nil {
			return nil, errors.Annotate(err, "Failed to scan stage listing")
		}
		files = append(files, StageFile{Name: name, Size: size})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return files, nil
}

// GetStageFile downloads one staged file into localDir. The local file
// keeps the staged base name, still gzipped.
func GetStageFile(ctx context.Context, db *sql.DB, stageFilePath, localDir string) error {
	stmt := fmt.Sprintf("GET '@%s' 'file://%s/'", stageFilePath, localDir)
	_, err := db.ExecContext(ctx, stmt)
	return sferror.WrapSQL(err, "Failed to download stage file @%s", stageFilePath)
}

// UploadStream uploads the reader's content as fileName under stagePath
// via a streamed PUT. The driver compresses on the way up.
func UploadStream(ctx context.Context, db *sql.DB, r io.Reader, stagePath, fileName string) error {
	ctx = gosnowflake.WithFileStream(ctx, r)
	stmt := fmt.Sprintf("PUT 'file:///%s' '@%s' AUTO_COMPRESS = TRUE OVERWRITE = TRUE", fileName, stagePath)
	_, err := db.ExecContext(ctx, stmt)
	return sferror.WrapSQL(err, "Failed to upload %s to stage @%s", fileName, stagePath)
}

// CopyIntoTable loads every staged batch under stagePath into the target
// table. The batches carry a header row, hence SKIP_HEADER.
func CopyIntoTable(db *sql.DB, targetTable, stagePath string, onError OnErrorMode) error {
	stmt, err := formatter.Format(`
COPY INTO {targetTable}
FROM @{stagePath}
FILE_FORMAT = (TYPE = 'CSV' SKIP_HEADER = 1 EMPTY_FIELD_AS_NULL = FALSE NULL_IF = ('\\N') FIELD_OPTIONALLY_ENCLOSED_BY = '"' ESCAPE = '\\')
ON_ERROR = {onError};
`, formatter.Named{
		"targetTable": utils.EscapeString(targetTable),
		"stagePath":   utils.EscapeString(stagePath),
		"onError":     string(onError),
	})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = db.Exec(stmt)
	return sferror.WrapSQL(err, "Failed to load staged files into table %s", targetTable)
}

func RemoveStageFile(db *sql.DB, stageFilePath string) error {
	_, err := db.Exec(fmt.Sprintf("REMOVE '@%s'", stageFilePath))
	return sferror.WrapSQL(err, "Failed to remove stage file @%s", stageFilePath)
}
