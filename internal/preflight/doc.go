// Package preflight provides readiness checks for the filesystem paths,
// external tools, and remote manifest the asset cache depends on.
//
// These checks run in two contexts:
//   - The pipeline calls RunAll before a run and refuses to start when a
//     required directory is unusable.
//   - The CLI "doctor" command renders every check, including the tool and
//     manifest probes, as a status report.
package preflight
