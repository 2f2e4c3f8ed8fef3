// Package parse turns raw model output into domain records.
//
// Each parser composes tag extraction from package extract. A record is
// produced only when all of its required fields were recovered; records that
// parse but break structural rules are left for package validate to reject.
// Parsers never return errors: a miss yields no record.
package parse
