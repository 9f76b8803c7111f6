// Package logs reads the daily log files written under the state
// directory.
//
// Tail prints the last lines of the newest file and, in follow mode, keeps
// polling for appended lines, switching to the next day's file when it
// appears. Lines can be filtered by substring so a single run can be traced
// through its run_id.
package logs
