package repositories

import (
	"strings"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
)

// logQuery logs a statement on a single line together with its arguments, result and error.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Debugw("query",
		"sql", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}
