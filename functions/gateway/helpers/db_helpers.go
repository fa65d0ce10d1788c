package helpers

import (
	"os"
	"strings"
)

func IsDeployed() bool {
	stage := os.Getenv("SST_STAGE")
	return stage == "prod" || strings.HasPrefix(stage, "feature-")
}

// GetDbTableName resolves a deployed table name from the environment; local
// dev against the dynamodb container uses the bare prefix.
func GetDbTableName(tablePrefix string) string {
	if !IsDeployed() {
		return tablePrefix
	}
	return os.Getenv("SST_Table_tableName_" + tablePrefix)
}

func IsRemoteDB() bool {
	return os.Getenv("USE_REMOTE_DB") == "true" || IsDeployed()
}
