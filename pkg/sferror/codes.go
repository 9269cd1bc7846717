package sferror

// Kind tells whether a failure should be attributed to the pipeline user
// or to the system the pipeline runs against.
type Kind int

const (
	KindUnknown Kind = iota
	KindUser
	KindSystem
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Category is a coarse failure label surfaced to the host runtime.
type Category string

const (
	CategoryGeneric             Category = "PLUGIN_ERROR"
	CategoryDataException       Category = "DATA_EXCEPTION"
	CategoryFeatureNotSupported Category = "FEATURE_NOT_SUPPORTED"
	CategoryInvalidAuth         Category = "INVALID_AUTHORIZATION_SPECIFICATION"
	CategoryInvalidParameter    Category = "INVALID_PARAMETER_VALUE"
	CategoryLimitExceeded       Category = "PROGRAM_LIMIT_EXCEEDED"
	CategoryStatementIncomplete Category = "SQL_STATEMENT_NOT_YET_COMPLETE"
	CategorySyntaxError         Category = "SYNTAX_ERROR"
	CategoryInternalError       Category = "INTERNAL_ERROR"
	CategoryConnectionError     Category = "SQLCLIENT_UNABLE_TO_ESTABLISH_SQLCONNECTION"
	CategoryQueryCanceled       Category = "QUERY_CANCELED"
	CategorySystemError         Category = "SYSTEM_ERROR"
	CategoryIOError             Category = "IO_ERROR"
)

// classification is one row of the static lookup tables.
type classification struct {
	Kind     Kind
	Category Category
}

// sqlStateTable maps SQLSTATE values (or two-byte class prefixes) reported
// by Snowflake to a classification. Specific five-byte entries win over
// class prefixes.
var sqlStateTable = map[string]classification{
	"0A000": {KindUser, CategoryFeatureNotSupported},
	"22023": {KindUser, CategoryInvalidParameter},
	"22": {KindUser, CategoryDataException},
	"28000": {KindUser, CategoryInvalidAuth},
	"28": {KindUser, CategoryInvalidAuth},
	"42601": {KindUser, CategorySyntaxError},
	"42": {KindUser, CategorySyntaxError},
	"54000": {KindUser, CategoryLimitExceeded},
	"54": {KindUser, CategoryLimitExceeded},
	"03000": {KindUser, CategoryStatementIncomplete},
	"08001": {KindSystem, CategoryConnectionError},
	"08006": {KindSystem, CategoryConnectionError},
	"08": {KindSystem, CategoryConnectionError},
	"57014": {KindSystem, CategoryQueryCanceled},
	"57": {KindSystem, CategorySystemError},
	"58030": {KindSystem, CategoryIOError},
	"58": {KindSystem, CategorySystemError},
	"XX000": {KindSystem, CategoryInternalError},
	"XX": {KindSystem, CategoryInternalError},
}

// errorNumberTable maps well-known Snowflake error numbers to a
// classification. Entries here take precedence over the SQLSTATE table.
var errorNumberTable = map[int]classification{
	604:    {KindSystem, CategoryQueryCanceled},       // statement canceled
	1003:   {KindUser, CategorySyntaxError},           // SQL compilation error
	2003:   {KindUser, CategorySyntaxError},           // object does not exist
	2043:   {KindUser, CategoryInvalidParameter},      // object not found or not authorized
	90105:  {KindUser, CategoryInvalidAuth},           // insufficient privileges
	390100: {KindUser, CategoryInvalidAuth},           // incorrect username or password
	390114: {KindUser, CategoryInvalidAuth},           // authentication token expired
	390144: {KindUser, CategoryInvalidAuth},           // JWT token invalid
	390201: {KindSystem, CategoryConnectionError},     // communication failure
	603:    {KindSystem, CategoryInternalError},       // incident
}
