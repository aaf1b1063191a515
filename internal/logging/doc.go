// Package logging provides structured logging for the schema tools.
//
// # Creating a Logger
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stderr",
//	})
//
// Tests use logging.NewNop() or logging.NewWithWriter with a buffer.
//
// # Pass IDs
//
// Every ingestion pass gets an identifier that tags all of its entries:
//
//	passLogger := logger.WithPassID(logging.NewPassID())
//	passLogger.Warn("definition rejected",
//	    "file", "local.schema",
//	    "line", 12,
//	    "code", "Duplicate attributeType",
//	)
//
// # Output Formats
//
// Text format:
//
//	2026-02-18T10:30:00Z [warn] definition rejected pass_id=9f0c... code=Duplicate attributeType file=local.schema line=12
//
// JSON format:
//
//	{"ts":"2026-02-18T10:30:00Z","level":"warn","msg":"definition rejected","pass_id":"9f0c...",...}
package logging
